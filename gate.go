package portal

// RequireRoles checks the caller's role against an allowed set.
func RequireRoles(rp *ResolvedPrincipal, allowed ...Role) error {
	if rp == nil || rp.Principal == nil {
		return ErrNoToken
	}
	if !rp.Role().In(allowed...) {
		return ErrWrongRole.Clone().WithMetadata(map[string]any{
			"role": string(rp.Role()),
		})
	}
	return nil
}

// RequireOwnership checks that the caller created the resource it is
// mutating. Administrators pass on role alone; everyone else must match
// both owner id and owner kind.
func RequireOwnership(rp *ResolvedPrincipal, ownerID string, ownerKind Role) error {
	if rp == nil || rp.Principal == nil {
		return ErrNoToken
	}
	if rp.Role() == RoleAdmin {
		return nil
	}
	if rp.ID() == ownerID && rp.Role() == ownerKind {
		return nil
	}
	return ErrNotResourceOwner.Clone().WithMetadata(map[string]any{
		"role": string(rp.Role()),
	})
}
