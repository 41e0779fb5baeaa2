package portal_test

import (
	"context"
	"testing"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	portal "github.com/hiredesk/portal"
)

func newLifecycle(jobs *MockJobFinder, apps *MockApplicationStore, opts ...portal.LifecycleOption) *portal.ApplicationLifecycle {
	return portal.NewApplicationLifecycleWith(jobs, apps, opts...)
}

func submitMessage(jobID uuid.UUID) portal.SubmitApplicationMessage {
	return portal.SubmitApplicationMessage{
		JobID:     jobID.String(),
		FullName:  "Ada Applicant",
		Email:     "ada@example.com",
		ResumeRef: "/resumes/ada.pdf",
	}
}

func TestLifecycleSubmit(t *testing.T) {
	jobs := &MockJobFinder{}
	apps := &MockApplicationStore{}
	sink := &memorySink{}

	seeker := newSeeker(true)
	recruiter := newRecruiter(true)
	job := openJob(recruiter, nil)

	jobs.On("GetByID", mock.Anything, job.JobID.String()).Return(job, nil).Once()
	apps.On("Submit", mock.Anything, mock.MatchedBy(func(a *portal.Application) bool {
		return a.JobID == job.JobID &&
			a.ApplicantID.String() == seeker.ID() &&
			a.Status == portal.ApplicationPending
	})).Return(&portal.Application{
		ApplicationID: uuid.New(),
		JobID:         job.JobID,
		Status:        portal.ApplicationPending,
	}, nil).Once()

	lc := newLifecycle(jobs, apps, portal.WithLifecycleActivitySink(sink))

	created, err := lc.Submit(context.Background(), resolvedFor(seeker), submitMessage(job.JobID))
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, portal.ApplicationPending, created.Status)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, portal.ActivityEventApplicationSubmitted, events[0].EventType)
	assert.Equal(t, job.JobID.String(), events[0].Metadata["job_id"])

	jobs.AssertExpectations(t)
	apps.AssertExpectations(t)
}

func TestLifecycleSubmitRequiresSeeker(t *testing.T) {
	jobs := &MockJobFinder{}
	apps := &MockApplicationStore{}
	lc := newLifecycle(jobs, apps)

	recruiter := newRecruiter(true)
	job := openJob(recruiter, nil)

	for _, actor := range []portal.Principal{recruiter, newAdmin(true)} {
		_, err := lc.Submit(context.Background(), resolvedFor(actor), submitMessage(job.JobID))
		require.Error(t, err)
		requireTextCode(t, err, portal.TextCodeWrongRole)
	}

	_, err := lc.Submit(context.Background(), nil, submitMessage(job.JobID))
	assert.ErrorIs(t, err, portal.ErrNoToken)
}

func TestLifecycleSubmitJobNotFound(t *testing.T) {
	jobs := &MockJobFinder{}
	apps := &MockApplicationStore{}
	lc := newLifecycle(jobs, apps)

	seeker := newSeeker(true)

	t.Run("malformed id", func(t *testing.T) {
		msg := submitMessage(uuid.New())
		msg.JobID = "not-a-uuid"
		_, err := lc.Submit(context.Background(), resolvedFor(seeker), msg)
		assert.ErrorIs(t, err, portal.ErrJobNotFound)
	})

	t.Run("absent record", func(t *testing.T) {
		jobID := uuid.New()
		jobs.On("GetByID", mock.Anything, jobID.String()).
			Return(nil, repository.NewRecordNotFound()).Once()

		_, err := lc.Submit(context.Background(), resolvedFor(seeker), submitMessage(jobID))
		assert.ErrorIs(t, err, portal.ErrJobNotFound)
	})
}

func TestLifecycleSubmitClosedJob(t *testing.T) {
	seeker := newSeeker(true)
	recruiter := newRecruiter(true)

	t.Run("status closed", func(t *testing.T) {
		jobs := &MockJobFinder{}
		lc := newLifecycle(jobs, &MockApplicationStore{})

		job := openJob(recruiter, nil)
		job.Status = portal.JobStatusClosed
		jobs.On("GetByID", mock.Anything, job.JobID.String()).Return(job, nil).Once()

		_, err := lc.Submit(context.Background(), resolvedFor(seeker), submitMessage(job.JobID))
		assert.ErrorIs(t, err, portal.ErrJobClosed)
	})

	t.Run("deadline passed", func(t *testing.T) {
		jobs := &MockJobFinder{}
		lc := newLifecycle(jobs, &MockApplicationStore{})

		past := time.Now().Add(-time.Hour)
		job := openJob(recruiter, &past)
		jobs.On("GetByID", mock.Anything, job.JobID.String()).Return(job, nil).Once()

		_, err := lc.Submit(context.Background(), resolvedFor(seeker), submitMessage(job.JobID))
		assert.ErrorIs(t, err, portal.ErrJobClosed)
	})

	t.Run("deadline in the future", func(t *testing.T) {
		jobs := &MockJobFinder{}
		apps := &MockApplicationStore{}
		lc := newLifecycle(jobs, apps)

		future := time.Now().Add(time.Hour)
		job := openJob(recruiter, &future)
		jobs.On("GetByID", mock.Anything, job.JobID.String()).Return(job, nil).Once()
		apps.On("Submit", mock.Anything, mock.Anything).
			Return(&portal.Application{ApplicationID: uuid.New(), Status: portal.ApplicationPending}, nil).Once()

		_, err := lc.Submit(context.Background(), resolvedFor(seeker), submitMessage(job.JobID))
		assert.NoError(t, err)
	})
}

func TestLifecycleSubmitResumeRef(t *testing.T) {
	seeker := newSeeker(true)
	recruiter := newRecruiter(true)

	bad := []string{"", "   ", "resume.pdf", "http://"}
	for _, ref := range bad {
		jobs := &MockJobFinder{}
		lc := newLifecycle(jobs, &MockApplicationStore{})

		job := openJob(recruiter, nil)
		jobs.On("GetByID", mock.Anything, job.JobID.String()).Return(job, nil).Once()

		msg := submitMessage(job.JobID)
		msg.ResumeRef = ref

		_, err := lc.Submit(context.Background(), resolvedFor(seeker), msg)
		assert.ErrorIs(t, err, portal.ErrResumeMissing, "ref %q", ref)
	}

	good := []string{"/resumes/ada.pdf", "https://cdn.example.com/resumes/ada.pdf"}
	for _, ref := range good {
		jobs := &MockJobFinder{}
		apps := &MockApplicationStore{}
		lc := newLifecycle(jobs, apps)

		job := openJob(recruiter, nil)
		jobs.On("GetByID", mock.Anything, job.JobID.String()).Return(job, nil).Once()
		apps.On("Submit", mock.Anything, mock.Anything).
			Return(&portal.Application{ApplicationID: uuid.New(), Status: portal.ApplicationPending}, nil).Once()

		msg := submitMessage(job.JobID)
		msg.ResumeRef = ref

		_, err := lc.Submit(context.Background(), resolvedFor(seeker), msg)
		assert.NoError(t, err, "ref %q", ref)
	}
}

func TestLifecycleSetStatus(t *testing.T) {
	jobs := &MockJobFinder{}
	apps := &MockApplicationStore{}
	sink := &memorySink{}

	recruiter := newRecruiter(true)

	app := pendingApplication()
	updated := *app
	updated.Status = portal.ApplicationApproved
	now := time.Now()
	updated.DecidedAt = &now

	apps.On("GetByID", mock.Anything, app.ApplicationID.String()).Return(app, nil).Once()
	apps.On("UpdateStatus", mock.Anything, app.ApplicationID, portal.ApplicationApproved).
		Return(&updated, nil).Once()

	lc := newLifecycle(jobs, apps, portal.WithLifecycleActivitySink(sink))

	got, err := lc.SetStatus(context.Background(), resolvedFor(recruiter), app.ApplicationID.String(), portal.ApplicationApproved)
	require.NoError(t, err)
	assert.Equal(t, portal.ApplicationApproved, got.Status)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, portal.ActivityEventApplicationStatusMove, events[0].EventType)

	apps.AssertExpectations(t)
}

func TestLifecycleSetStatusRequiresDecider(t *testing.T) {
	lc := newLifecycle(&MockJobFinder{}, &MockApplicationStore{})

	_, err := lc.SetStatus(context.Background(), resolvedFor(newSeeker(true)), uuid.NewString(), portal.ApplicationApproved)
	require.Error(t, err)
	requireTextCode(t, err, portal.TextCodeWrongRole)
}

func TestLifecycleSetStatusRejectsNonDecision(t *testing.T) {
	lc := newLifecycle(&MockJobFinder{}, &MockApplicationStore{})
	recruiter := newRecruiter(true)

	for _, status := range []portal.ApplicationStatus{portal.ApplicationPending, "archived", ""} {
		_, err := lc.SetStatus(context.Background(), resolvedFor(recruiter), uuid.NewString(), status)
		require.Error(t, err)
		requireTextCode(t, err, portal.TextCodeInvalidStatus)
	}
}

func TestLifecycleSetStatusIdempotent(t *testing.T) {
	apps := &MockApplicationStore{}
	recruiter := newRecruiter(true)

	app := pendingApplication()
	app.Status = portal.ApplicationApproved

	apps.On("GetByID", mock.Anything, app.ApplicationID.String()).Return(app, nil).Once()

	lc := newLifecycle(&MockJobFinder{}, apps)

	got, err := lc.SetStatus(context.Background(), resolvedFor(recruiter), app.ApplicationID.String(), portal.ApplicationApproved)
	require.NoError(t, err)
	assert.Equal(t, portal.ApplicationApproved, got.Status)

	apps.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestLifecycleGetOwnership(t *testing.T) {
	apps := &MockApplicationStore{}

	owner := newSeeker(true)
	app := pendingApplication()
	app.ApplicantID = owner.SeekerID

	apps.On("GetByID", mock.Anything, app.ApplicationID.String()).Return(app, nil)

	lc := newLifecycle(&MockJobFinder{}, apps)

	t.Run("owner reads own", func(t *testing.T) {
		got, err := lc.Get(context.Background(), resolvedFor(owner), app.ApplicationID.String())
		require.NoError(t, err)
		assert.Equal(t, app.ApplicationID, got.ApplicationID)
	})

	t.Run("other seeker is denied", func(t *testing.T) {
		_, err := lc.Get(context.Background(), resolvedFor(newSeeker(true)), app.ApplicationID.String())
		require.Error(t, err)
		requireTextCode(t, err, portal.TextCodeNotOwner)
	})

	t.Run("recruiter reads any", func(t *testing.T) {
		_, err := lc.Get(context.Background(), resolvedFor(newRecruiter(true)), app.ApplicationID.String())
		assert.NoError(t, err)
	})

	t.Run("admin reads any", func(t *testing.T) {
		_, err := lc.Get(context.Background(), resolvedFor(newAdmin(true)), app.ApplicationID.String())
		assert.NoError(t, err)
	})
}

func TestLifecycleGetNotFound(t *testing.T) {
	apps := &MockApplicationStore{}
	lc := newLifecycle(&MockJobFinder{}, apps)

	t.Run("malformed id", func(t *testing.T) {
		_, err := lc.Get(context.Background(), resolvedFor(newRecruiter(true)), "not-a-uuid")
		assert.ErrorIs(t, err, portal.ErrApplicationNotFound)
	})

	t.Run("absent record", func(t *testing.T) {
		id := uuid.New()
		apps.On("GetByID", mock.Anything, id.String()).
			Return(nil, repository.NewRecordNotFound()).Once()

		_, err := lc.Get(context.Background(), resolvedFor(newRecruiter(true)), id.String())
		assert.ErrorIs(t, err, portal.ErrApplicationNotFound)
	})
}
