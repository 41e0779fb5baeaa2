package portal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransitionMetadata captures extra context for a status transition.
type TransitionMetadata struct {
	Reason   string
	Metadata map[string]any
}

// TransitionContext is passed into hooks for additional processing.
type TransitionContext struct {
	Actor       ActorRef
	Application *Application
	From        ApplicationStatus
	To          ApplicationStatus
	Meta        TransitionMetadata
}

// TransitionHook is executed before or after a transition.
type TransitionHook func(ctx context.Context, tc TransitionContext) error

// TransitionHookPhase identifies whether a hook ran before or after persistence.
type TransitionHookPhase string

const (
	HookPhaseBefore TransitionHookPhase = "before_transition"
	HookPhaseAfter  TransitionHookPhase = "after_transition"
)

// TransitionOption customizes a single transition.
type TransitionOption func(*transitionOptions)

// ApplicationStateMachine defines lifecycle operations for applications.
type ApplicationStateMachine interface {
	Transition(ctx context.Context, actor ActorRef, app *Application, target ApplicationStatus, opts ...TransitionOption) (*Application, error)
	CurrentStatus(app *Application) ApplicationStatus
}

// HookErrorHandler handles errors surfaced by transition hooks.
type HookErrorHandler func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*applicationStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(sm *applicationStateMachine) {
		if clock != nil {
			sm.now = clock
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish lifecycle events.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(sm *applicationStateMachine) {
		sm.activitySink = normalizeActivitySink(sink)
	}
}

// WithStateMachineHookErrorHandler overrides how hook failures are propagated.
func WithStateMachineHookErrorHandler(handler HookErrorHandler) StateMachineOption {
	return func(sm *applicationStateMachine) {
		if handler != nil {
			sm.hookErrorHandler = handler
		}
	}
}

// WithStateMachineLogger overrides the logger used for sink failures.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(sm *applicationStateMachine) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithTransitionReason sets the human-readable reason for the transition.
func WithTransitionReason(reason string) TransitionOption {
	return func(opts *transitionOptions) {
		opts.metadata.Reason = reason
	}
}

// WithTransitionMetadata merges metadata into the transition context.
func WithTransitionMetadata(metadata map[string]any) TransitionOption {
	return func(opts *transitionOptions) {
		if len(metadata) == 0 {
			return
		}
		if opts.metadata.Metadata == nil {
			opts.metadata.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			opts.metadata.Metadata[k] = v
		}
	}
}

// WithBeforeTransitionHook adds a hook executed before the status update.
func WithBeforeTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.beforeHooks = append(opts.beforeHooks, h)
		}
	}
}

// WithAfterTransitionHook adds a hook executed after the status update succeeds.
func WithAfterTransitionHook(h TransitionHook) TransitionOption {
	return func(opts *transitionOptions) {
		if h != nil {
			opts.afterHooks = append(opts.afterHooks, h)
		}
	}
}

// ApplicationStatusUpdater is the persistence surface the state machine
// needs. Applications satisfies it.
type ApplicationStatusUpdater interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status ApplicationStatus) (*Application, error)
}

// NewApplicationStateMachine returns the default implementation backed by
// the provided repository. The only legal moves are pending to approved
// and pending to rejected; re-setting the current status is a no-op and
// approved/rejected are terminal.
func NewApplicationStateMachine(apps ApplicationStatusUpdater, opts ...StateMachineOption) ApplicationStateMachine {
	sm := &applicationStateMachine{
		apps: apps,
		transitions: map[ApplicationStatus]map[ApplicationStatus]struct{}{
			ApplicationPending: {
				ApplicationApproved: {},
				ApplicationRejected: {},
			},
		},
		now:          time.Now,
		activitySink: noopActivitySink{},
		logger:       defLogger{},
		hookErrorHandler: func(ctx context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error {
			return defaultHookErrorHandler(ctx, phase, err, tc)
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

type applicationStateMachine struct {
	apps             ApplicationStatusUpdater
	transitions      map[ApplicationStatus]map[ApplicationStatus]struct{}
	now              func() time.Time
	activitySink     ActivitySink
	logger           Logger
	hookErrorHandler HookErrorHandler
}

type transitionOptions struct {
	metadata    TransitionMetadata
	beforeHooks []TransitionHook
	afterHooks  []TransitionHook
}

func (o *transitionOptions) cloneMetadata() TransitionMetadata {
	var cloned map[string]any
	if len(o.metadata.Metadata) > 0 {
		cloned = make(map[string]any, len(o.metadata.Metadata))
		for k, v := range o.metadata.Metadata {
			cloned[k] = v
		}
	}

	return TransitionMetadata{
		Reason:   o.metadata.Reason,
		Metadata: cloned,
	}
}

func (sm *applicationStateMachine) Transition(ctx context.Context, actor ActorRef, app *Application, target ApplicationStatus, opts ...TransitionOption) (*Application, error) {
	if app == nil {
		return nil, ErrInvalidTransition.Clone().WithMetadata(map[string]any{
			"target": target,
			"reason": "application is nil",
		})
	}

	app.EnsureStatus()
	from := app.Status

	if !target.IsValid() {
		return nil, ErrInvalidStatus.Clone().WithMetadata(map[string]any{
			"status": string(target),
		})
	}

	if from == target {
		return app, nil
	}

	options := sm.buildTransitionOptions(opts...)

	if !sm.canTransition(from, target) {
		return nil, ErrInvalidTransition.Clone().WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(target),
		})
	}

	ctxData := TransitionContext{
		Actor:       actor,
		Application: app,
		From:        from,
		To:          target,
		Meta:        options.cloneMetadata(),
	}

	if err := sm.runHooks(ctx, options.beforeHooks, ctxData, HookPhaseBefore); err != nil {
		return nil, err
	}

	updated, err := sm.apps.UpdateStatus(ctx, app.ApplicationID, target)
	if err != nil {
		return nil, err
	}

	sm.applyUpdates(app, updated, target)

	if err := sm.runHooks(ctx, options.afterHooks, ctxData, HookPhaseAfter); err != nil {
		return nil, err
	}

	sm.recordActivity(ctx, ActivityEvent{
		EventType: ActivityEventApplicationStatusMove,
		Actor:     actor,
		SubjectID: app.ApplicationID.String(),
		From:      string(from),
		To:        string(target),
		Metadata:  sm.transitionMetadata(ctxData.Meta),
	})

	return app, nil
}

func (sm *applicationStateMachine) CurrentStatus(app *Application) ApplicationStatus {
	if app == nil {
		return ""
	}
	app.EnsureStatus()
	return app.Status
}

func (sm *applicationStateMachine) runHooks(ctx context.Context, hooks []TransitionHook, data TransitionContext, phase TransitionHookPhase) error {
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, data); err != nil {
			if sm.hookErrorHandler == nil {
				return err
			}
			return sm.hookErrorHandler(ctx, phase, err, data)
		}
	}
	return nil
}

func (sm *applicationStateMachine) canTransition(from, to ApplicationStatus) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func (sm *applicationStateMachine) buildTransitionOptions(opts ...TransitionOption) *transitionOptions {
	options := &transitionOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}
	return options
}

func defaultHookErrorHandler(_ context.Context, phase TransitionHookPhase, err error, tc TransitionContext) error {
	panic(fmt.Sprintf(
		"portal: %s transition hook failed: %v\nApplicationID: %s from=%s to=%s reason=%s\nProvide portal.WithStateMachineHookErrorHandler to customize error handling in production.",
		phase,
		err,
		tc.Application.ApplicationID,
		tc.From,
		tc.To,
		tc.Meta.Reason,
	))
}

func (sm *applicationStateMachine) applyUpdates(app, updated *Application, target ApplicationStatus) {
	if updated != nil {
		if updated.Status != "" {
			app.Status = updated.Status
		} else {
			app.Status = target
		}
		app.DecidedAt = updated.DecidedAt
		return
	}

	app.Status = target
	now := sm.now()
	app.DecidedAt = &now
}

func (sm *applicationStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.Actor == (ActorRef{}) {
		event.Actor = ActorRef{Type: "system"}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = sm.now()
	}

	sink := normalizeActivitySink(sm.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		sm.logger.Warn("state machine activity sink error: %v", err)
	}
}

func (sm *applicationStateMachine) transitionMetadata(meta TransitionMetadata) map[string]any {
	if meta.Reason == "" && len(meta.Metadata) == 0 {
		return nil
	}

	result := map[string]any{}
	if meta.Reason != "" {
		result["reason"] = meta.Reason
	}
	for k, v := range meta.Metadata {
		result[k] = v
	}
	return result
}

// uuidOrNil parses an id string, returning uuid.Nil on failure.
func uuidOrNil(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
