package portal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	portal "github.com/hiredesk/portal"
)

func pendingApplication() *portal.Application {
	return &portal.Application{
		ApplicationID: uuid.New(),
		JobID:         uuid.New(),
		ApplicantID:   uuid.New(),
		FullName:      "Ada Applicant",
		EmailAddr:     "ada@example.com",
		ResumeRef:     "/resumes/ada.pdf",
		Status:        portal.ApplicationPending,
	}
}

func recruiterActor() portal.ActorRef {
	return portal.ActorRef{ID: uuid.NewString(), Kind: portal.RoleRecruiter, Type: "user"}
}

func TestStateMachineApprove(t *testing.T) {
	apps := &MockApplicationStore{}
	sink := &memorySink{}
	decided := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	sm := portal.NewApplicationStateMachine(apps,
		portal.WithStateMachineActivitySink(sink),
		portal.WithStateMachineClock(func() time.Time { return decided }),
	)

	app := pendingApplication()
	updated := *app
	updated.Status = portal.ApplicationApproved
	updated.DecidedAt = &decided

	apps.On("UpdateStatus", mock.Anything, app.ApplicationID, portal.ApplicationApproved).
		Return(&updated, nil).Once()

	actor := recruiterActor()
	got, err := sm.Transition(context.Background(), actor, app, portal.ApplicationApproved,
		portal.WithTransitionReason("strong interview"))
	require.NoError(t, err)

	assert.Equal(t, portal.ApplicationApproved, got.Status)
	require.NotNil(t, got.DecidedAt)
	assert.Equal(t, decided, *got.DecidedAt)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, portal.ActivityEventApplicationStatusMove, events[0].EventType)
	assert.Equal(t, string(portal.ApplicationPending), events[0].From)
	assert.Equal(t, string(portal.ApplicationApproved), events[0].To)
	assert.Equal(t, app.ApplicationID.String(), events[0].SubjectID)
	assert.Equal(t, actor, events[0].Actor)
	assert.Equal(t, "strong interview", events[0].Metadata["reason"])

	apps.AssertExpectations(t)
}

func TestStateMachineReject(t *testing.T) {
	apps := &MockApplicationStore{}

	sm := portal.NewApplicationStateMachine(apps)

	app := pendingApplication()
	updated := *app
	updated.Status = portal.ApplicationRejected
	now := time.Now()
	updated.DecidedAt = &now

	apps.On("UpdateStatus", mock.Anything, app.ApplicationID, portal.ApplicationRejected).
		Return(&updated, nil).Once()

	got, err := sm.Transition(context.Background(), recruiterActor(), app, portal.ApplicationRejected)
	require.NoError(t, err)
	assert.Equal(t, portal.ApplicationRejected, got.Status)

	apps.AssertExpectations(t)
}

func TestStateMachineSameStatusIsNoOp(t *testing.T) {
	apps := &MockApplicationStore{}
	sink := &memorySink{}

	sm := portal.NewApplicationStateMachine(apps, portal.WithStateMachineActivitySink(sink))

	app := pendingApplication()
	app.Status = portal.ApplicationApproved

	got, err := sm.Transition(context.Background(), recruiterActor(), app, portal.ApplicationApproved)
	require.NoError(t, err)
	assert.Equal(t, portal.ApplicationApproved, got.Status)

	// No persistence call and no event for a re-set of the current status.
	apps.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, sink.all())
}

func TestStateMachineTerminalStates(t *testing.T) {
	cases := []struct {
		name string
		from portal.ApplicationStatus
		to   portal.ApplicationStatus
	}{
		{"approved to rejected", portal.ApplicationApproved, portal.ApplicationRejected},
		{"rejected to approved", portal.ApplicationRejected, portal.ApplicationApproved},
		{"approved back to pending", portal.ApplicationApproved, portal.ApplicationPending},
		{"rejected back to pending", portal.ApplicationRejected, portal.ApplicationPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			apps := &MockApplicationStore{}
			sm := portal.NewApplicationStateMachine(apps)

			app := pendingApplication()
			app.Status = tc.from

			_, err := sm.Transition(context.Background(), recruiterActor(), app, tc.to)
			require.Error(t, err)
			requireTextCode(t, err, portal.TextCodeInvalidTransition)

			apps.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestStateMachineInvalidTarget(t *testing.T) {
	apps := &MockApplicationStore{}
	sm := portal.NewApplicationStateMachine(apps)

	app := pendingApplication()

	_, err := sm.Transition(context.Background(), recruiterActor(), app, portal.ApplicationStatus("archived"))
	require.Error(t, err)
	requireTextCode(t, err, portal.TextCodeInvalidStatus)
}

func TestStateMachineNilApplication(t *testing.T) {
	apps := &MockApplicationStore{}
	sm := portal.NewApplicationStateMachine(apps)

	_, err := sm.Transition(context.Background(), recruiterActor(), nil, portal.ApplicationApproved)
	require.Error(t, err)
	requireTextCode(t, err, portal.TextCodeInvalidTransition)
}

func TestStateMachineHooks(t *testing.T) {
	apps := &MockApplicationStore{}
	sm := portal.NewApplicationStateMachine(apps)

	app := pendingApplication()
	updated := *app
	updated.Status = portal.ApplicationApproved

	apps.On("UpdateStatus", mock.Anything, app.ApplicationID, portal.ApplicationApproved).
		Return(&updated, nil).Once()

	var phases []string
	_, err := sm.Transition(context.Background(), recruiterActor(), app, portal.ApplicationApproved,
		portal.WithBeforeTransitionHook(func(ctx context.Context, tc portal.TransitionContext) error {
			phases = append(phases, "before")
			assert.Equal(t, portal.ApplicationPending, tc.From)
			assert.Equal(t, portal.ApplicationApproved, tc.To)
			return nil
		}),
		portal.WithAfterTransitionHook(func(ctx context.Context, tc portal.TransitionContext) error {
			phases = append(phases, "after")
			return nil
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "after"}, phases)

	apps.AssertExpectations(t)
}

func TestStateMachineBeforeHookFailureAborts(t *testing.T) {
	apps := &MockApplicationStore{}

	sm := portal.NewApplicationStateMachine(apps,
		portal.WithStateMachineHookErrorHandler(func(ctx context.Context, phase portal.TransitionHookPhase, err error, tc portal.TransitionContext) error {
			assert.Equal(t, portal.HookPhaseBefore, phase)
			return err
		}),
	)

	app := pendingApplication()

	_, err := sm.Transition(context.Background(), recruiterActor(), app, portal.ApplicationApproved,
		portal.WithBeforeTransitionHook(func(ctx context.Context, tc portal.TransitionContext) error {
			return assert.AnError
		}),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	apps.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, portal.ApplicationPending, app.Status)
}

func TestStateMachineCurrentStatus(t *testing.T) {
	sm := portal.NewApplicationStateMachine(&MockApplicationStore{})

	app := &portal.Application{ApplicationID: uuid.New()}
	assert.Equal(t, portal.ApplicationPending, sm.CurrentStatus(app))
	assert.Equal(t, portal.ApplicationStatus(""), sm.CurrentStatus(nil))
}
