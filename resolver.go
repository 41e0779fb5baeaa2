package portal

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Resolver turns a bearer token into a live principal. Resolution honors
// the token's principal-kind tag strictly: the subject is looked up only
// in the collection the tag names, never probed across collections.
type Resolver struct {
	tokens TokenService
	store  CredentialStore
	logger Logger
}

// NewResolver creates a Resolver over a token service and credential store.
func NewResolver(tokens TokenService, store CredentialStore, logger Logger) *Resolver {
	if logger == nil {
		logger = defLogger{}
	}
	return &Resolver{
		tokens: tokens,
		store:  store,
		logger: logger,
	}
}

// Resolve validates the raw token and loads the principal it names.
// Failures map onto the unauthenticated error set:
//   - invalid or expired token: ErrTokenMalformed / ErrTokenExpired
//   - missing or unknown kind tag: ErrTokenMalformed
//   - subject gone from its collection: ErrIdentityNotFound
//   - subject present but deactivated: ErrAccountDeactivated
func (r *Resolver) Resolve(ctx context.Context, rawToken string) (*ResolvedPrincipal, error) {
	claims, err := r.tokens.Validate(rawToken)
	if err != nil {
		return nil, err
	}

	kind := claims.Kind()
	if !kind.IsValid() {
		r.logger.Warn("Resolve token carries unknown principal kind", "kind", string(kind))
		return nil, ErrUnknownPrincipalKind
	}

	id := claims.UserID()
	if id == "" {
		id = claims.Subject()
	}
	if id == "" {
		return nil, ErrTokenMalformed
	}

	principal, err := r.store.FindPrincipalByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "principal lookup failed")
	}

	if principal == nil {
		return nil, ErrIdentityNotFound
	}

	if !principal.Active() {
		return nil, ErrAccountDeactivated
	}

	return &ResolvedPrincipal{Principal: principal, Claims: claims}, nil
}
