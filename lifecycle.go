package portal

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// SubmitApplicationMessage carries one application submission.
type SubmitApplicationMessage struct {
	JobID           string `json:"job_id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	LinkedinProfile string `json:"linkedin_profile"`
	PortfolioURL    string `json:"portfolio_url"`
	NoticePeriod    string `json:"notice_period"`
	CurrentSalary   string `json:"current_salary"`
	ExpectedSalary  string `json:"expected_salary"`
	ResumeRef       string `json:"resume_ref"`
	CoverLetter     string `json:"cover_letter"`
}

func (e SubmitApplicationMessage) Type() string { return "application.submit" }

// JobFinder is the read surface Submit needs over postings. Jobs
// satisfies it.
type JobFinder interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Job, error)
}

// ApplicationStore is the persistence surface the lifecycle needs over
// submissions. Applications satisfies it.
type ApplicationStore interface {
	ApplicationStatusUpdater
	Submit(ctx context.Context, record *Application) (*Application, error)
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*Application, error)
}

// ApplicationLifecycle coordinates submissions and decisions over the
// application collection.
type ApplicationLifecycle struct {
	jobs    JobFinder
	apps    ApplicationStore
	machine ApplicationStateMachine
	sink    ActivitySink
	logger  Logger
	now     func() time.Time
}

// NewApplicationLifecycle wires the lifecycle over a repository manager.
func NewApplicationLifecycle(repo RepositoryManager, opts ...LifecycleOption) *ApplicationLifecycle {
	return NewApplicationLifecycleWith(repo.Jobs(), repo.Applications(), opts...)
}

// NewApplicationLifecycleWith wires the lifecycle over explicit stores.
func NewApplicationLifecycleWith(jobs JobFinder, apps ApplicationStore, opts ...LifecycleOption) *ApplicationLifecycle {
	lc := &ApplicationLifecycle{
		jobs:   jobs,
		apps:   apps,
		sink:   noopActivitySink{},
		logger: defLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(lc)
		}
	}

	if lc.machine == nil {
		lc.machine = NewApplicationStateMachine(
			apps,
			WithStateMachineActivitySink(lc.sink),
			WithStateMachineLogger(lc.logger),
			WithStateMachineClock(lc.now),
		)
	}

	return lc
}

// LifecycleOption customizes lifecycle construction.
type LifecycleOption func(*ApplicationLifecycle)

// WithLifecycleActivitySink sets the sink used for submission and decision events.
func WithLifecycleActivitySink(sink ActivitySink) LifecycleOption {
	return func(lc *ApplicationLifecycle) {
		lc.sink = normalizeActivitySink(sink)
	}
}

// WithLifecycleLogger overrides the default logger.
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(lc *ApplicationLifecycle) {
		if logger != nil {
			lc.logger = logger
		}
	}
}

// WithLifecycleClock injects a custom clock (useful for tests).
func WithLifecycleClock(clock func() time.Time) LifecycleOption {
	return func(lc *ApplicationLifecycle) {
		if clock != nil {
			lc.now = clock
		}
	}
}

// WithLifecycleStateMachine overrides the default state machine.
func WithLifecycleStateMachine(sm ApplicationStateMachine) LifecycleOption {
	return func(lc *ApplicationLifecycle) {
		lc.machine = sm
	}
}

// Submit records one pending application for the acting job seeker.
// The job must exist and still accept submissions, and the resume
// reference must be a well-formed URI.
func (lc *ApplicationLifecycle) Submit(ctx context.Context, actor *ResolvedPrincipal, msg SubmitApplicationMessage) (*Application, error) {
	if err := RequireRoles(actor, RoleJobSeeker); err != nil {
		return nil, err
	}

	jobID, err := uuid.Parse(msg.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	job, err := lc.jobs.GetByID(ctx, jobID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrJobNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "job lookup failed")
	}

	if !job.AcceptsApplications(lc.now()) {
		return nil, ErrJobClosed
	}

	if !isWellFormedResumeRef(msg.ResumeRef) {
		return nil, ErrResumeMissing
	}

	record := &Application{
		JobID:           job.JobID,
		ApplicantID:     uuidOrNil(actor.ID()),
		FullName:        msg.FullName,
		EmailAddr:       msg.Email,
		Phone:           msg.Phone,
		LinkedinProfile: msg.LinkedinProfile,
		PortfolioURL:    msg.PortfolioURL,
		NoticePeriod:    msg.NoticePeriod,
		CurrentSalary:   msg.CurrentSalary,
		ExpectedSalary:  msg.ExpectedSalary,
		ResumeRef:       msg.ResumeRef,
		CoverLetter:     msg.CoverLetter,
		Status:          ApplicationPending,
	}

	created, err := lc.apps.Submit(ctx, record)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not persist application")
	}

	lc.record(ctx, ActivityEvent{
		EventType: ActivityEventApplicationSubmitted,
		Actor:     actor.Actor(),
		SubjectID: created.ApplicationID.String(),
		Metadata: map[string]any{
			"job_id": job.JobID.String(),
		},
	})

	return created, nil
}

// SetStatus applies a recruiter or administrator decision. Re-setting
// the current status is an idempotent success; approved and rejected are
// terminal.
func (lc *ApplicationLifecycle) SetStatus(ctx context.Context, actor *ResolvedPrincipal, applicationID string, status ApplicationStatus) (*Application, error) {
	if err := RequireRoles(actor, RoleRecruiter, RoleAdmin); err != nil {
		return nil, err
	}

	if !status.IsValid() || !status.IsDecision() {
		return nil, ErrInvalidStatus.Clone().WithMetadata(map[string]any{
			"status": string(status),
		})
	}

	app, err := lc.Get(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	return lc.machine.Transition(ctx, actor.Actor(), app, status)
}

// Get loads one application. Applicant owners read their own; recruiters
// and administrators read any.
func (lc *ApplicationLifecycle) Get(ctx context.Context, actor *ResolvedPrincipal, applicationID string) (*Application, error) {
	if actor == nil || actor.Principal == nil {
		return nil, ErrNoToken
	}

	id, err := uuid.Parse(applicationID)
	if err != nil {
		return nil, ErrApplicationNotFound
	}

	app, err := lc.apps.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrApplicationNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "application lookup failed")
	}

	if actor.Role() == RoleJobSeeker {
		if err := RequireOwnership(actor, app.ApplicantID.String(), RoleJobSeeker); err != nil {
			return nil, err
		}
	}

	return app, nil
}

func (lc *ApplicationLifecycle) record(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = lc.now()
	}

	sink := normalizeActivitySink(lc.sink)
	if err := sink.Record(ctx, event); err != nil {
		lc.logger.Warn("lifecycle activity sink error: %v", err)
	}
}

// isWellFormedResumeRef accepts absolute URIs and rooted storage paths.
func isWellFormedResumeRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}

	if strings.HasPrefix(ref, "/") {
		return true
	}

	u, err := url.Parse(ref)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Host != ""
}
