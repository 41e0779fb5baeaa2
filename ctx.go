package portal

import "context"

var principalCtxKey = &contextKey{"principal"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// ResolvedPrincipal is the outcome of token resolution: the live record
// plus the claims it was resolved from.
type ResolvedPrincipal struct {
	Principal Principal
	Claims    AuthClaims
}

// Role is a shortcut for the resolved principal's role.
func (r *ResolvedPrincipal) Role() Role {
	if r == nil || r.Principal == nil {
		return ""
	}
	return r.Principal.Role()
}

// ID is a shortcut for the resolved principal's id.
func (r *ResolvedPrincipal) ID() string {
	if r == nil || r.Principal == nil {
		return ""
	}
	return r.Principal.ID()
}

// Actor converts the resolution into an audit actor reference.
func (r *ResolvedPrincipal) Actor() ActorRef {
	if r == nil {
		return ActorRef{Type: "unknown"}
	}
	return actorFromPrincipal(r.Principal)
}

// WithPrincipalContext sets the resolved principal in the given context
func WithPrincipalContext(ctx context.Context, rp *ResolvedPrincipal) context.Context {
	return context.WithValue(ctx, principalCtxKey, rp)
}

// PrincipalFromContext finds the resolved principal from the context.
func PrincipalFromContext(ctx context.Context) (*ResolvedPrincipal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*ResolvedPrincipal)
	return raw, ok && raw != nil
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}
