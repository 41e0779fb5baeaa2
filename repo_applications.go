package portal

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Applications is the repository over application submissions.
type Applications interface {
	repository.Repository[*Application]

	Submit(ctx context.Context, record *Application) (*Application, error)
	SubmitTx(ctx context.Context, tx bun.IDB, record *Application) (*Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus) (*Application, error)
	UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status ApplicationStatus) (*Application, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]*Application, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*Application, error)
}

type applications struct {
	repository.Repository[*Application]
	db *bun.DB
}

var (
	_ Applications                        = (*applications)(nil)
	_ repository.Repository[*Application] = (*applications)(nil)
)

func NewApplicationsRepository(db *bun.DB) Applications {
	repo := repository.NewRepository[*Application](db, repository.ModelHandlers[*Application]{
		NewRecord: func() *Application { return &Application{} },
		GetID: func(a *Application) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ApplicationID
		},
		SetID: func(a *Application, id uuid.UUID) {
			if a != nil {
				a.ApplicationID = id
			}
		},
	})

	return &applications{
		Repository: repo,
		db:         db,
	}
}

func (a *applications) Submit(ctx context.Context, record *Application) (*Application, error) {
	return a.SubmitTx(ctx, a.db, record)
}

func (a *applications) SubmitTx(ctx context.Context, tx bun.IDB, record *Application) (*Application, error) {
	prepareApplicationDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *applications) UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus) (*Application, error) {
	return a.UpdateStatusTx(ctx, a.db, id, status)
}

func (a *applications) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status ApplicationStatus) (*Application, error) {
	now := time.Now()
	record := &Application{
		ApplicationID: id,
		Status:        status,
		DecidedAt:     &now,
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func (a *applications) ListByJob(ctx context.Context, jobID uuid.UUID) ([]*Application, error) {
	records := []*Application{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.job_id = ?", jobID).
		Order("applied_at DESC").
		Scan(ctx)

	return records, err
}

func (a *applications) ListByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*Application, error) {
	records := []*Application{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.applicant_id = ?", applicantID).
		Order("applied_at DESC").
		Scan(ctx)

	return records, err
}

func prepareApplicationDefaults(record *Application) {
	if record == nil {
		return
	}

	record.EnsureStatus()
	record.EmailAddr = normalizeEmail(record.EmailAddr)

	if record.ApplicationID == uuid.Nil {
		record.ApplicationID = uuid.New()
	}

	if record.AppliedAt == nil {
		now := time.Now()
		record.AppliedAt = &now
	}
}
