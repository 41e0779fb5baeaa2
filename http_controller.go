package portal

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// AuthController exposes registration, login, and self-service routes.
type AuthController struct {
	Repo        RepositoryManager
	Auther      *Auther
	Register    *RegisterPrincipalHandler
	Logger      Logger
	PhoneRegion string
}

// RegistrationPayload is the registration body for all three kinds.
type RegistrationPayload struct {
	FullName        string `form:"full_name" json:"full_name"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
	Phone           string `form:"phone" json:"phone"`
	Headline        string `form:"headline" json:"headline"`
	Skills          string `form:"skills" json:"skills"`
	ExperienceYears int    `form:"experience_years" json:"experience_years"`
	CompanyName     string `form:"company_name" json:"company_name"`
	CompanyWebsite  string `form:"company_website" json:"company_website"`
	CompanySize     string `form:"company_size" json:"company_size"`
	Industry        string `form:"industry" json:"industry"`
}

// Validate will validate the payload for the target kind.
func (r RegistrationPayload) Validate(kind Role, phoneRegion string) error {
	fields := []*validation.FieldRules{
		validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber(phoneRegion))),
	}

	if r.ConfirmPassword != "" {
		fields = append(fields, validation.Field(
			&r.ConfirmPassword,
			validation.By(ValidateStringEquals(r.Password)),
		))
	}

	if kind == RoleRecruiter {
		fields = append(fields,
			validation.Field(&r.CompanyName, validation.Required, validation.Length(1, 200)),
			validation.Field(&r.CompanyWebsite, is.URL),
		)
	}

	return validation.ValidateStruct(&r, fields...)
}

// LoginPayload is the login body.
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UpdateProfilePayload carries self-service profile mutations. Empty
// fields leave the stored value untouched.
type UpdateProfilePayload struct {
	FullName        string `form:"full_name" json:"full_name"`
	Phone           string `form:"phone" json:"phone"`
	Headline        string `form:"headline" json:"headline"`
	Skills          string `form:"skills" json:"skills"`
	ExperienceYears *int   `form:"experience_years" json:"experience_years"`
	CompanyName     string `form:"company_name" json:"company_name"`
	CompanyWebsite  string `form:"company_website" json:"company_website"`
	CompanySize     string `form:"company_size" json:"company_size"`
	Industry        string `form:"industry" json:"industry"`
}

// Validate will run validation rules
func (r UpdateProfilePayload) Validate(phoneRegion string) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FullName, validation.Length(0, 200)),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber(phoneRegion))),
		validation.Field(&r.CompanyWebsite, is.URL),
	)
}

// ChangePasswordPayload carries a password rotation.
type ChangePasswordPayload struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.NewPassword)),
		),
	)
}

// RegisterPost handles POST /api/:role/register.
func (a *AuthController) RegisterPost(c *fiber.Ctx) error {
	kind, ok := ParseRouteRole(c.Params("role"))
	if !ok {
		return unknownRoleSegment(c.Params("role"))
	}

	payload := new(RegistrationPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register parse payload", "error", err)
		return badPayload(err)
	}

	if err := payload.Validate(kind, a.PhoneRegion); err != nil {
		a.Logger.Debug("register validate payload", "error", err)
		return validationFailed(err)
	}

	created, err := a.Register.Execute(c.UserContext(), RegisterPrincipalMessage{
		Kind:            kind,
		FullName:        payload.FullName,
		Email:           payload.Email,
		Password:        payload.Password,
		Phone:           payload.Phone,
		Headline:        payload.Headline,
		Skills:          payload.Skills,
		ExperienceYears: payload.ExperienceYears,
		CompanyName:     payload.CompanyName,
		CompanyWebsite:  payload.CompanyWebsite,
		CompanySize:     payload.CompanySize,
		Industry:        payload.Industry,
	})
	if err != nil {
		return err
	}

	token, _, err := a.Auther.Login(c.UserContext(), kind, payload.Email, payload.Password)
	if err != nil {
		// The account exists but could not be logged in. Surface the
		// record so the client can retry at the login route.
		a.Logger.Warn("post-registration login failed", "error", err)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"principal": NewPrincipalSummary(created),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"principal": NewPrincipalSummary(created),
		"token":     token,
	})
}

// LoginPost handles POST /api/:role/login.
func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	kind, ok := ParseRouteRole(c.Params("role"))
	if !ok {
		return unknownRoleSegment(c.Params("role"))
	}

	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return badPayload(err)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(err)
	}

	token, identity, err := a.Auther.Login(c.UserContext(), kind, payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"principal": NewPrincipalSummary(identity),
		"token":     token,
	})
}

// Me handles GET /api/me.
func (a *AuthController) Me(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	return c.JSON(fiber.Map{
		"principal": NewPrincipalSummary(rp.Principal),
	})
}

// UpdateMe handles PUT /api/me.
func (a *AuthController) UpdateMe(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	payload := new(UpdateProfilePayload)
	if err := c.BodyParser(payload); err != nil {
		return badPayload(err)
	}

	if err := payload.Validate(a.PhoneRegion); err != nil {
		return validationFailed(err)
	}

	updated, err := a.applyProfileUpdate(c, rp, payload)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"principal": NewPrincipalSummary(updated),
	})
}

// ChangePassword handles POST /api/me/password.
func (a *AuthController) ChangePassword(c *fiber.Ctx) error {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return ErrNoToken
	}

	payload := new(ChangePasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		return badPayload(err)
	}

	if err := payload.Validate(); err != nil {
		return validationFailed(err)
	}

	if err := ComparePasswordAndHash(payload.CurrentPassword, rp.Principal.CredentialHash()); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(payload.NewPassword)
	if err != nil {
		return err
	}

	if err := a.storePasswordHash(c, rp, hash); err != nil {
		return err
	}

	a.Auther.emitAuthEvent(c.UserContext(), ActivityEventPasswordChanged, rp.Actor(), rp.ID(), nil)

	return c.JSON(fiber.Map{"ok": true})
}

func (a *AuthController) applyProfileUpdate(c *fiber.Ctx, rp *ResolvedPrincipal, payload *UpdateProfilePayload) (Principal, error) {
	ctx := c.UserContext()

	switch rp.Role() {
	case RoleJobSeeker:
		record, err := a.Repo.Seekers().GetByID(ctx, rp.ID())
		if err != nil {
			return nil, err
		}
		setIfPresent(&record.FullName, payload.FullName)
		setIfPresent(&record.Phone, payload.Phone)
		setIfPresent(&record.Headline, payload.Headline)
		setIfPresent(&record.Skills, payload.Skills)
		if payload.ExperienceYears != nil {
			record.ExperienceYears = *payload.ExperienceYears
		}
		return a.Repo.Seekers().Update(ctx, record)
	case RoleRecruiter:
		record, err := a.Repo.Recruiters().GetByID(ctx, rp.ID())
		if err != nil {
			return nil, err
		}
		setIfPresent(&record.FullName, payload.FullName)
		setIfPresent(&record.Mobile, payload.Phone)
		setIfPresent(&record.CompanyName, payload.CompanyName)
		setIfPresent(&record.CompanyWebsite, payload.CompanyWebsite)
		setIfPresent(&record.CompanySize, payload.CompanySize)
		setIfPresent(&record.Industry, payload.Industry)
		return a.Repo.Recruiters().Update(ctx, record)
	case RoleAdmin:
		record, err := a.Repo.Admins().GetByID(ctx, rp.ID())
		if err != nil {
			return nil, err
		}
		setIfPresent(&record.FullName, payload.FullName)
		return a.Repo.Admins().Update(ctx, record)
	default:
		return nil, ErrUnknownPrincipalKind
	}
}

func (a *AuthController) storePasswordHash(c *fiber.Ctx, rp *ResolvedPrincipal, hash string) error {
	ctx := c.UserContext()

	switch rp.Role() {
	case RoleJobSeeker:
		record, err := a.Repo.Seekers().GetByID(ctx, rp.ID())
		if err != nil {
			return err
		}
		record.PasswordHash = hash
		_, err = a.Repo.Seekers().Update(ctx, record)
		return err
	case RoleRecruiter:
		record, err := a.Repo.Recruiters().GetByID(ctx, rp.ID())
		if err != nil {
			return err
		}
		record.PasswordHash = hash
		_, err = a.Repo.Recruiters().Update(ctx, record)
		return err
	case RoleAdmin:
		record, err := a.Repo.Admins().GetByID(ctx, rp.ID())
		if err != nil {
			return err
		}
		record.PasswordHash = hash
		_, err = a.Repo.Admins().Update(ctx, record)
		return err
	default:
		return ErrUnknownPrincipalKind
	}
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func unknownRoleSegment(segment string) error {
	return goerrors.New("unknown role", goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{
			"role": segment,
		})
}

func badPayload(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "could not parse request body").
		WithCode(goerrors.CodeBadRequest)
}

func validationFailed(err error) error {
	return goerrors.ValidateWithOzzo(func() error { return err }, "invalid payload")
}
