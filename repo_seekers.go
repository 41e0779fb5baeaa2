package portal

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// JobSeekers is the repository over the job_seekers collection.
type JobSeekers interface {
	repository.Repository[*JobSeeker]

	GetByEmail(ctx context.Context, email string) (*JobSeeker, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*JobSeeker, error)
	Register(ctx context.Context, record *JobSeeker) (*JobSeeker, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *JobSeeker) (*JobSeeker, error)
	TrackSuccessfulLogin(ctx context.Context, record *JobSeeker) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*JobSeeker, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type seekers struct {
	repository.Repository[*JobSeeker]
	db *bun.DB
}

var (
	_ JobSeekers                        = (*seekers)(nil)
	_ repository.Repository[*JobSeeker] = (*seekers)(nil)
)

func NewJobSeekersRepository(db *bun.DB) JobSeekers {
	repo := repository.NewRepository[*JobSeeker](db, repository.ModelHandlers[*JobSeeker]{
		NewRecord: func() *JobSeeker { return &JobSeeker{} },
		GetID: func(s *JobSeeker) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.SeekerID
		},
		SetID: func(s *JobSeeker, id uuid.UUID) {
			if s != nil {
				s.SeekerID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &seekers{
		Repository: repo,
		db:         db,
	}
}

func (a *seekers) GetByEmail(ctx context.Context, email string) (*JobSeeker, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *seekers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*JobSeeker, error) {
	record := &JobSeeker{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *seekers) Register(ctx context.Context, record *JobSeeker) (*JobSeeker, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *seekers) RegisterTx(ctx context.Context, tx bun.IDB, record *JobSeeker) (*JobSeeker, error) {
	prepareSeekerDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *seekers) TrackSuccessfulLogin(ctx context.Context, record *JobSeeker) error {
	now := time.Now()
	_, err := a.db.NewRaw(`
		UPDATE "job_seekers" AS "jsk"
		SET "last_login_at" = ?
		WHERE ("jsk".id = ?);
	`, now, record.SeekerID).Exec(ctx)

	return err
}

func (a *seekers) SetActive(ctx context.Context, id uuid.UUID, active bool) (*JobSeeker, error) {
	record := &JobSeeker{
		SeekerID: id,
		IsActive: active,
	}

	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (a *seekers) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*JobSeeker)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

func prepareSeekerDefaults(record *JobSeeker) {
	if record == nil {
		return
	}

	record.EmailAddr = normalizeEmail(record.EmailAddr)

	if record.SeekerID == uuid.Nil {
		record.SeekerID = uuid.New()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
