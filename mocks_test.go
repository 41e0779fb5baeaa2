package portal_test

import (
	"context"
	"sync"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	portal "github.com/hiredesk/portal"
)

// fakeCredentialStore keeps principals in per-kind maps, mirroring the
// three disjoint collections.
type fakeCredentialStore struct {
	mu   sync.Mutex
	byID map[portal.Role]map[string]portal.Principal
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{
		byID: map[portal.Role]map[string]portal.Principal{
			portal.RoleJobSeeker: {},
			portal.RoleRecruiter: {},
			portal.RoleAdmin:     {},
		},
	}
}

func (s *fakeCredentialStore) add(p portal.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.Role()][p.ID()] = p
}

func (s *fakeCredentialStore) FindPrincipalByID(_ context.Context, kind portal.Role, id string) (portal.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection, ok := s.byID[kind]
	if !ok {
		return nil, portal.ErrUnknownPrincipalKind
	}

	p, ok := collection[id]
	if !ok {
		return nil, portal.ErrIdentityNotFound
	}
	return p, nil
}

func (s *fakeCredentialStore) FindPrincipalByEmail(_ context.Context, kind portal.Role, email string) (portal.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	collection, ok := s.byID[kind]
	if !ok {
		return nil, portal.ErrUnknownPrincipalKind
	}

	for _, p := range collection {
		if p.Email() == email {
			return p, nil
		}
	}
	return nil, portal.ErrIdentityNotFound
}

// MockApplicationStore implements portal.ApplicationStore
type MockApplicationStore struct {
	mock.Mock
}

func (m *MockApplicationStore) Submit(ctx context.Context, record *portal.Application) (*portal.Application, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.Application), args.Error(1)
}

func (m *MockApplicationStore) UpdateStatus(ctx context.Context, id uuid.UUID, status portal.ApplicationStatus) (*portal.Application, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.Application), args.Error(1)
}

func (m *MockApplicationStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*portal.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.Application), args.Error(1)
}

// MockJobFinder implements portal.JobFinder
type MockJobFinder struct {
	mock.Mock
}

func (m *MockJobFinder) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*portal.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portal.Job), args.Error(1)
}

// memorySink records activity events for assertions.
type memorySink struct {
	mu     sync.Mutex
	events []portal.ActivityEvent
}

func (s *memorySink) Record(_ context.Context, event portal.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *memorySink) all() []portal.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]portal.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func newSeeker(active bool) *portal.JobSeeker {
	return &portal.JobSeeker{
		SeekerID:     uuid.New(),
		FullName:     "Ada Applicant",
		EmailAddr:    "ada@example.com",
		PasswordHash: "not-a-real-hash",
		IsActive:     active,
	}
}

func newRecruiter(active bool) *portal.Recruiter {
	return &portal.Recruiter{
		RecruiterID:  uuid.New(),
		FullName:     "Rita Recruiter",
		EmailAddr:    "rita@example.com",
		PasswordHash: "not-a-real-hash",
		CompanyName:  "Initech",
		IsActive:     active,
	}
}

func newAdmin(active bool) *portal.Administrator {
	return &portal.Administrator{
		AdminID:      uuid.New(),
		FullName:     "Omar Operator",
		EmailAddr:    "omar@example.com",
		PasswordHash: "not-a-real-hash",
		IsActive:     active,
	}
}

func resolvedFor(p portal.Principal) *portal.ResolvedPrincipal {
	return &portal.ResolvedPrincipal{Principal: p}
}

func openJob(postedBy *portal.Recruiter, deadline *time.Time) *portal.Job {
	return &portal.Job{
		JobID:        uuid.New(),
		Title:        "Backend Engineer",
		Status:       portal.JobStatusOpen,
		Deadline:     deadline,
		PostedByID:   postedBy.RecruiterID,
		PostedByKind: portal.RoleRecruiter,
	}
}
