package portal

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

const principalLocalsKey = "principal"

// AuthScheme is the accepted Authorization header scheme.
const AuthScheme = "Bearer"

// ExtractRawToken pulls the bearer token out of the Authorization
// header. Missing or differently-shaped headers yield ErrNoToken.
func ExtractRawToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrNoToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthScheme) || strings.TrimSpace(parts[1]) == "" {
		return "", ErrNoToken
	}

	return strings.TrimSpace(parts[1]), nil
}

// RequireAuth resolves the caller and stores the resolution in request
// locals. Any resolution failure short-circuits with 401.
func RequireAuth(resolver *Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := ExtractRawToken(c)
		if err != nil {
			return err
		}

		rp, err := resolver.Resolve(c.UserContext(), raw)
		if err != nil {
			return err
		}

		c.Locals(principalLocalsKey, rp)
		c.SetUserContext(WithPrincipalContext(c.UserContext(), rp))

		return c.Next()
	}
}

// RequireRolesMiddleware gates a route on role membership. Compose after
// RequireAuth.
func RequireRolesMiddleware(allowed ...Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rp, ok := PrincipalFromFiber(c)
		if !ok {
			return ErrNoToken
		}
		if err := RequireRoles(rp, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}

// PrincipalFromFiber reads the resolved principal stored by RequireAuth.
func PrincipalFromFiber(c *fiber.Ctx) (*ResolvedPrincipal, bool) {
	rp, ok := c.Locals(principalLocalsKey).(*ResolvedPrincipal)
	return rp, ok && rp != nil
}

// NewErrorHandler builds the fiber error handler mapping structured
// errors onto the wire contract. Unauthenticated failures collapse into
// a small fixed set of bodies so responses leak nothing about accounts.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error
		if !errors.As(err, &richErr) {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return c.Status(fiberErr.Code).JSON(fiber.Map{
					"error": fiberErr.Message,
				})
			}

			logger.Error("unhandled error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		status := httpStatusFor(richErr)
		body := fiber.Map{
			"error": publicMessageFor(richErr),
		}

		if validationMap := richErr.ValidationMap(); len(validationMap) > 0 {
			body["validation"] = validationMap
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed", "status", status, "reason", richErr.TextCode, "error", richErr)
			body["error"] = "internal server error"
		} else {
			logger.Debug("request rejected", "status", status, "reason", richErr.TextCode)
		}

		return c.Status(status).JSON(body)
	}
}

func httpStatusFor(err *errors.Error) int {
	if err.Code != 0 {
		return int(err.Code)
	}

	switch err.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// publicMessageFor keeps 401 bodies to a fixed vocabulary. The reason
// codes stay in the logs.
func publicMessageFor(err *errors.Error) string {
	switch err.TextCode {
	case TextCodeNoToken:
		return "no token"
	case TextCodeInvalidCreds:
		return "invalid credentials"
	case TextCodeDeactivated:
		return "deactivated"
	case TextCodeTokenExpired, TextCodeTokenMalformed, TextCodeUnknownKind, TextCodeIdentityNotFound:
		return "invalid token"
	default:
		return err.Message
	}
}
