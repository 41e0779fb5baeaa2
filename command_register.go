package portal

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegisterPrincipalMessage carries one registration for any of the
// three collections. Fields that do not apply to the target kind are
// ignored.
type RegisterPrincipalMessage struct {
	Kind            Role   `json:"kind"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Phone           string `json:"phone"`
	Headline        string `json:"headline"`
	Skills          string `json:"skills"`
	ExperienceYears int    `json:"experience_years"`
	CompanyName     string `json:"company_name"`
	CompanyWebsite  string `json:"company_website"`
	CompanySize     string `json:"company_size"`
	Industry        string `json:"industry"`
	UseHashid       bool   `json:"-"`
}

func (e RegisterPrincipalMessage) Type() string { return "principal.register" }

// RegisterPrincipalHandler creates one principal inside a transaction.
type RegisterPrincipalHandler struct {
	repo   RepositoryManager
	sink   ActivitySink
	logger Logger
}

func NewRegisterPrincipalHandler(repo RepositoryManager, opts ...RegisterOption) *RegisterPrincipalHandler {
	h := &RegisterPrincipalHandler{
		repo:   repo,
		sink:   noopActivitySink{},
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// RegisterOption customizes handler construction.
type RegisterOption func(*RegisterPrincipalHandler)

// WithRegisterActivitySink sets the sink used for registration events.
func WithRegisterActivitySink(sink ActivitySink) RegisterOption {
	return func(h *RegisterPrincipalHandler) {
		h.sink = normalizeActivitySink(sink)
	}
}

// WithRegisterLogger overrides the default logger.
func WithRegisterLogger(logger Logger) RegisterOption {
	return func(h *RegisterPrincipalHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Execute registers the principal in the collection the message names.
// A duplicate email inside that collection fails with ErrDuplicateEmail;
// the same address in another collection is legal.
func (h *RegisterPrincipalHandler) Execute(ctx context.Context, event RegisterPrincipalMessage) (Principal, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterPrincipalHandler) execute(ctx context.Context, event RegisterPrincipalMessage) (Principal, error) {
	if !event.Kind.IsValid() {
		return nil, ErrUnknownPrincipalKind
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if existing, err := h.repo.FindPrincipalByEmail(ctx, event.Kind, event.Email); err == nil && existing != nil {
		return nil, ErrDuplicateEmail
	} else if err != nil && !goerrors.Is(err, ErrIdentityNotFound) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "duplicate email check failed")
	}

	var created Principal
	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		created, txErr = h.createTx(ctx, tx, event, hash)
		return txErr
	})

	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "registration transaction failed")
	}

	h.record(ctx, ActivityEvent{
		EventType: ActivityEventRegistered,
		Actor:     actorFromPrincipal(created),
		SubjectID: created.ID(),
		Metadata: map[string]any{
			"kind": string(event.Kind),
		},
	})

	return created, nil
}

func (h *RegisterPrincipalHandler) createTx(ctx context.Context, tx bun.Tx, event RegisterPrincipalMessage, hash string) (Principal, error) {
	switch event.Kind {
	case RoleJobSeeker:
		record := &JobSeeker{
			FullName:        event.FullName,
			EmailAddr:       event.Email,
			PasswordHash:    hash,
			Phone:           event.Phone,
			Headline:        event.Headline,
			Skills:          event.Skills,
			ExperienceYears: event.ExperienceYears,
			IsActive:        true,
		}
		applyHashid(event, func(id uuid.UUID) { record.SeekerID = id })
		return h.repo.Seekers().RegisterTx(ctx, tx, record)
	case RoleRecruiter:
		record := &Recruiter{
			FullName:       event.FullName,
			EmailAddr:      event.Email,
			PasswordHash:   hash,
			Mobile:         event.Phone,
			CompanyName:    event.CompanyName,
			CompanyWebsite: event.CompanyWebsite,
			CompanySize:    event.CompanySize,
			Industry:       event.Industry,
			IsActive:       true,
		}
		applyHashid(event, func(id uuid.UUID) { record.RecruiterID = id })
		return h.repo.Recruiters().RegisterTx(ctx, tx, record)
	case RoleAdmin:
		record := &Administrator{
			FullName:     event.FullName,
			EmailAddr:    event.Email,
			PasswordHash: hash,
			IsActive:     true,
		}
		applyHashid(event, func(id uuid.UUID) { record.AdminID = id })
		return h.repo.Admins().RegisterTx(ctx, tx, record)
	default:
		return nil, ErrUnknownPrincipalKind
	}
}

func (h *RegisterPrincipalHandler) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	sink := normalizeActivitySink(h.sink)
	if err := sink.Record(ctx, event); err != nil {
		h.logger.Warn("register activity sink error: %v", err)
	}
}

func applyHashid(event RegisterPrincipalMessage, set func(uuid.UUID)) {
	if !event.UseHashid {
		return
	}
	if id, err := hashid.NewUUID(event.Email); err == nil {
		set(id)
	}
}
