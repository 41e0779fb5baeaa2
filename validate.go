package portal

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return goerrors.New("values do not match", goerrors.CategoryValidation)
		}
		return nil
	}
}

// ValidatePhoneNumber checks a phone number parses and is valid for the
// given default region. Empty values pass; pair with validation.Required
// when the field is mandatory.
func ValidatePhoneNumber(defaultRegion string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return nil
		}

		num, err := phonenumbers.Parse(s, defaultRegion)
		if err != nil {
			return goerrors.New("invalid phone number", goerrors.CategoryValidation)
		}

		if !phonenumbers.IsValidNumber(num) {
			return goerrors.New("invalid phone number", goerrors.CategoryValidation)
		}

		return nil
	}
}

// FormatValidationErrorToMap flattens an ozzo validation error into a
// field -> message map suitable for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	verrs, ok := err.(validation.Errors)
	if !ok {
		out["payload"] = err.Error()
		return out
	}

	keys := make([]string, 0, len(verrs))
	for k := range verrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if verrs[k] != nil {
			out[k] = verrs[k].Error()
		}
	}

	return out
}
