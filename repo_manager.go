package portal

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories. It also implements
// CredentialStore by dispatching on the principal kind: each lookup hits
// exactly one collection.
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	CredentialStore

	Seekers() JobSeekers
	Recruiters() Recruiters
	Admins() Administrators
	Jobs() Jobs
	Applications() Applications
}

type mngr struct {
	db           *bun.DB
	seekers      JobSeekers
	recruiters   Recruiters
	admins       Administrators
	jobs         Jobs
	applications Applications
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:           db,
		seekers:      NewJobSeekersRepository(db),
		recruiters:   NewRecruitersRepository(db),
		admins:       NewAdministratorsRepository(db),
		jobs:         NewJobsRepository(db),
		applications: NewApplicationsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.seekers == nil {
		return errors.New("repository seekers should be initialized")
	}

	if m.recruiters == nil {
		return errors.New("repository recruiters should be initialized")
	}

	if m.admins == nil {
		return errors.New("repository admins should be initialized")
	}

	if m.jobs == nil {
		return errors.New("repository jobs should be initialized")
	}

	if m.applications == nil {
		return errors.New("repository applications should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Seekers() JobSeekers        { return m.seekers }
func (m mngr) Recruiters() Recruiters     { return m.recruiters }
func (m mngr) Admins() Administrators     { return m.admins }
func (m mngr) Jobs() Jobs                 { return m.jobs }
func (m mngr) Applications() Applications { return m.applications }

// FindPrincipalByID looks up a subject id in the single collection the
// kind names. A miss is ErrIdentityNotFound, never a fallthrough to
// another collection.
func (m mngr) FindPrincipalByID(ctx context.Context, kind Role, id string) (Principal, error) {
	switch kind {
	case RoleJobSeeker:
		return principalOrNotFound(m.seekers.GetByID(ctx, id))
	case RoleRecruiter:
		return principalOrNotFound(m.recruiters.GetByID(ctx, id))
	case RoleAdmin:
		return principalOrNotFound(m.admins.GetByID(ctx, id))
	default:
		return nil, ErrUnknownPrincipalKind
	}
}

// FindPrincipalByEmail looks up an email in the single collection the
// kind names.
func (m mngr) FindPrincipalByEmail(ctx context.Context, kind Role, email string) (Principal, error) {
	switch kind {
	case RoleJobSeeker:
		return principalOrNotFound(m.seekers.GetByEmail(ctx, email))
	case RoleRecruiter:
		return principalOrNotFound(m.recruiters.GetByEmail(ctx, email))
	case RoleAdmin:
		return principalOrNotFound(m.admins.GetByEmail(ctx, email))
	default:
		return nil, ErrUnknownPrincipalKind
	}
}

func principalOrNotFound[T Principal](record T, err error) (Principal, error) {
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}
	return record, nil
}

// CreateSchema creates the portal tables when they do not exist yet.
// Production deployments run real migrations; this keeps dev and test
// databases usable without a separate step.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*JobSeeker)(nil),
		(*Recruiter)(nil),
		(*Administrator)(nil),
		(*Job)(nil),
		(*Application)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
