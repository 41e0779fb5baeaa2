package portal

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Jobs is the repository over job postings.
type Jobs interface {
	repository.Repository[*Job]

	Post(ctx context.Context, record *Job) (*Job, error)
	PostTx(ctx context.Context, tx bun.IDB, record *Job) (*Job, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	// CloseExpired flips open jobs whose deadline is in the past to
	// closed. Returns the number of postings closed.
	CloseExpired(ctx context.Context, now time.Time) (int, error)
}

type jobs struct {
	repository.Repository[*Job]
	db *bun.DB
}

var (
	_ Jobs                        = (*jobs)(nil)
	_ repository.Repository[*Job] = (*jobs)(nil)
)

func NewJobsRepository(db *bun.DB) Jobs {
	repo := repository.NewRepository[*Job](db, repository.ModelHandlers[*Job]{
		NewRecord: func() *Job { return &Job{} },
		GetID: func(j *Job) uuid.UUID {
			if j == nil {
				return uuid.Nil
			}
			return j.JobID
		},
		SetID: func(j *Job, id uuid.UUID) {
			if j != nil {
				j.JobID = id
			}
		},
	})

	return &jobs{
		Repository: repo,
		db:         db,
	}
}

func (a *jobs) Post(ctx context.Context, record *Job) (*Job, error) {
	return a.PostTx(ctx, a.db, record)
}

func (a *jobs) PostTx(ctx context.Context, tx bun.IDB, record *Job) (*Job, error) {
	prepareJobDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *jobs) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*Job)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

func (a *jobs) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := a.db.NewUpdate().
		Model((*Job)(nil)).
		Set("status = ?", JobStatusClosed).
		Set("updated_at = ?", now).
		Where("?TableAlias.status = ?", JobStatusOpen).
		Where("?TableAlias.deadline IS NOT NULL").
		Where("?TableAlias.deadline < ?", now).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(affected), nil
}

func prepareJobDefaults(record *Job) {
	if record == nil {
		return
	}

	if record.Status == "" {
		record.Status = JobStatusOpen
	}

	if record.JobID == uuid.Nil {
		record.JobID = uuid.New()
	}
}
