package portal

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Administrators is the repository over the administrators collection.
type Administrators interface {
	repository.Repository[*Administrator]

	GetByEmail(ctx context.Context, email string) (*Administrator, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Administrator, error)
	Register(ctx context.Context, record *Administrator) (*Administrator, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Administrator) (*Administrator, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*Administrator, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

type admins struct {
	repository.Repository[*Administrator]
	db *bun.DB
}

var (
	_ Administrators                        = (*admins)(nil)
	_ repository.Repository[*Administrator] = (*admins)(nil)
)

func NewAdministratorsRepository(db *bun.DB) Administrators {
	repo := repository.NewRepository[*Administrator](db, repository.ModelHandlers[*Administrator]{
		NewRecord: func() *Administrator { return &Administrator{} },
		GetID: func(a *Administrator) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.AdminID
		},
		SetID: func(a *Administrator, id uuid.UUID) {
			if a != nil {
				a.AdminID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &admins{
		Repository: repo,
		db:         db,
	}
}

func (a *admins) GetByEmail(ctx context.Context, email string) (*Administrator, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *admins) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Administrator, error) {
	record := &Administrator{}
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

func (a *admins) Register(ctx context.Context, record *Administrator) (*Administrator, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *admins) RegisterTx(ctx context.Context, tx bun.IDB, record *Administrator) (*Administrator, error) {
	prepareAdminDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *admins) SetActive(ctx context.Context, id uuid.UUID, active bool) (*Administrator, error) {
	record := &Administrator{
		AdminID:  id,
		IsActive: active,
	}

	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (a *admins) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*Administrator)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)

	return err
}

func prepareAdminDefaults(record *Administrator) {
	if record == nil {
		return
	}

	record.EmailAddr = normalizeEmail(record.EmailAddr)

	if record.AdminID == uuid.Nil {
		record.AdminID = uuid.New()
	}
}
