package portal

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Recruiters is the repository over the recruiters collection.
type Recruiters interface {
	repository.Repository[*Recruiter]

	GetByEmail(ctx context.Context, email string) (*Recruiter, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Recruiter, error)
	Register(ctx context.Context, record *Recruiter) (*Recruiter, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Recruiter) (*Recruiter, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Recruiter, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type recruiters struct {
	repository.Repository[*Recruiter]
	db *bun.DB
}

var (
	_ Recruiters                        = (*recruiters)(nil)
	_ repository.Repository[*Recruiter] = (*recruiters)(nil)
)

func NewRecruitersRepository(db *bun.DB) Recruiters {
	repo := repository.NewRepository[*Recruiter](db, repository.ModelHandlers[*Recruiter]{
		NewRecord: func() *Recruiter { return &Recruiter{} },
		GetID: func(r *Recruiter) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.RecruiterID
		},
		SetID: func(r *Recruiter, id uuid.UUID) {
			if r != nil {
				r.RecruiterID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &recruiters{
		Repository: repo,
		db:         db,
	}
}

func (a *recruiters) GetByEmail(ctx context.Context, email string) (*Recruiter, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *recruiters) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Recruiter, error) {
	record := &Recruiter{}
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

func (a *recruiters) Register(ctx context.Context, record *Recruiter) (*Recruiter, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *recruiters) RegisterTx(ctx context.Context, tx bun.IDB, record *Recruiter) (*Recruiter, error) {
	prepareRecruiterDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *recruiters) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Recruiter, error) {
	record := &Recruiter{
		RecruiterID: id,
		IsActive:    active,
	}

	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (a *recruiters) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*Recruiter)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

func prepareRecruiterDefaults(record *Recruiter) {
	if record == nil {
		return
	}

	record.EmailAddr = normalizeEmail(record.EmailAddr)

	if record.RecruiterID == uuid.Nil {
		record.RecruiterID = uuid.New()
	}
}
