package portal

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// AdminController exposes account administration: activation flips and
// the explicit hard delete. Routes are gated on RoleAdmin.
type AdminController struct {
	Repo   RepositoryManager
	Sink   ActivitySink
	Logger Logger
}

// Deactivate handles POST /api/admin/:role/:id/deactivate.
func (a *AdminController) Deactivate(c *fiber.Ctx) error {
	return a.setActive(c, false)
}

// Activate handles POST /api/admin/:role/:id/activate.
func (a *AdminController) Activate(c *fiber.Ctx) error {
	return a.setActive(c, true)
}

// Delete handles DELETE /api/admin/:role/:id. This is the only code path
// that removes a principal record.
func (a *AdminController) Delete(c *fiber.Ctx) error {
	rp, kind, id, err := a.parseTarget(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if _, err := a.Repo.FindPrincipalByID(ctx, kind, id.String()); err != nil {
		return a.notFound(err)
	}

	switch kind {
	case RoleJobSeeker:
		err = a.Repo.Seekers().DeleteByID(ctx, id)
	case RoleRecruiter:
		err = a.Repo.Recruiters().DeleteByID(ctx, id)
	case RoleAdmin:
		err = a.Repo.Admins().DeleteByID(ctx, id)
	}
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete account")
	}

	a.record(ctx, ActivityEvent{
		EventType: ActivityEventAccountDeleted,
		Actor:     rp.Actor(),
		SubjectID: id.String(),
		Metadata: map[string]any{
			"kind": string(kind),
		},
	})

	return c.JSON(fiber.Map{"ok": true})
}

func (a *AdminController) setActive(c *fiber.Ctx, active bool) error {
	rp, kind, id, err := a.parseTarget(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	if _, err := a.Repo.FindPrincipalByID(ctx, kind, id.String()); err != nil {
		return a.notFound(err)
	}

	var updated Principal
	switch kind {
	case RoleJobSeeker:
		updated, err = a.Repo.Seekers().SetActive(ctx, id, active)
	case RoleRecruiter:
		updated, err = a.Repo.Recruiters().SetActive(ctx, id, active)
	case RoleAdmin:
		updated, err = a.Repo.Admins().SetActive(ctx, id, active)
	}
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update account status")
	}

	a.record(ctx, ActivityEvent{
		EventType: ActivityEventAccountStatusChanged,
		Actor:     rp.Actor(),
		SubjectID: id.String(),
		To:        activeLabel(active),
		Metadata: map[string]any{
			"kind": string(kind),
		},
	})

	return c.JSON(fiber.Map{
		"principal": NewPrincipalSummary(updated),
	})
}

func (a *AdminController) parseTarget(c *fiber.Ctx) (*ResolvedPrincipal, Role, uuid.UUID, error) {
	rp, ok := PrincipalFromFiber(c)
	if !ok {
		return nil, "", uuid.Nil, ErrNoToken
	}

	if err := RequireRoles(rp, RoleAdmin); err != nil {
		return nil, "", uuid.Nil, err
	}

	kind, ok := ParseRouteRole(c.Params("role"))
	if !ok {
		return nil, "", uuid.Nil, unknownRoleSegment(c.Params("role"))
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, "", uuid.Nil, ErrIdentityNotFound.Clone().WithCode(goerrors.CodeNotFound)
	}

	return rp, kind, id, nil
}

// notFound maps lookup failures onto 404. ErrIdentityNotFound carries a
// 401 code for resolution; administration reads it as a missing record.
func (a *AdminController) notFound(err error) error {
	if goerrors.Is(err, ErrIdentityNotFound) || repository.IsRecordNotFound(err) {
		return ErrIdentityNotFound.Clone().WithCode(goerrors.CodeNotFound)
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "account lookup failed")
}

func (a *AdminController) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(a.Sink)
	if err := sink.Record(ctx, event); err != nil {
		a.Logger.Warn("admin activity sink error: %v", err)
	}
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
