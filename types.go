package portal

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the auth core options. The cmd package satisfies it from
// environment variables.
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetAudience() []string
	// GetTokenTTL returns the token lifetime for a principal kind.
	// Administrators typically get a shorter one.
	GetTokenTTL(kind Role) time.Duration
}

// TokenService mints and validates the portal's JWTs.
type TokenService interface {
	Issue(identity Principal, ttl time.Duration) (string, error)
	Validate(raw string) (AuthClaims, error)
}

// CredentialStore is the read surface the resolver and authenticator
// need over the three principal collections. RepositoryManager provides
// the production implementation.
type CredentialStore interface {
	FindPrincipalByID(ctx context.Context, kind Role, id string) (Principal, error)
	FindPrincipalByEmail(ctx context.Context, kind Role, email string) (Principal, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] PORTAL "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] PORTAL "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] PORTAL "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] PORTAL "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
