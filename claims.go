package portal

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the read surface the rest of the package uses for
// validated token claims.
type AuthClaims interface {
	Subject() string
	UserID() string
	Kind() Role
	Expires() (*time.Time, error)
	IssuedAt() (*time.Time, error)
}

// PortalClaims is the JWT payload for every issued token. Kind is the
// explicit principal-kind tag; the resolver trusts it over any other
// claim shape.
type PortalClaims struct {
	jwt.RegisteredClaims
	UID  string `json:"uid"`
	Knd  Role   `json:"knd"`
	Role string `json:"role"`
}

func (c PortalClaims) Subject() string { return c.RegisteredClaims.Subject }
func (c PortalClaims) UserID() string  { return c.UID }
func (c PortalClaims) Kind() Role      { return c.Knd }

func (c PortalClaims) Expires() (*time.Time, error) {
	exp, err := c.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, err
	}
	return &exp.Time, nil
}

func (c PortalClaims) IssuedAt() (*time.Time, error) {
	iat, err := c.GetIssuedAt()
	if err != nil || iat == nil {
		return nil, err
	}
	return &iat.Time, nil
}
