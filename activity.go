package portal

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventLoginSuccess          ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure          ActivityEventType = "auth.login.failure"
	ActivityEventRegistered            ActivityEventType = "auth.registered"
	ActivityEventPasswordChanged       ActivityEventType = "auth.password.changed"
	ActivityEventAccountStatusChanged  ActivityEventType = "account.status.changed"
	ActivityEventAccountDeleted        ActivityEventType = "account.deleted"
	ActivityEventApplicationSubmitted  ActivityEventType = "application.submitted"
	ActivityEventApplicationStatusMove ActivityEventType = "application.status.changed"
	ActivityEventJobClosed             ActivityEventType = "job.closed"
)

// ActorRef identifies who performed an action.
type ActorRef struct {
	ID   string `json:"id,omitempty"`
	Kind Role   `json:"kind,omitempty"`
	Type string `json:"type"`
}

// ActivityEvent captures audit-friendly information about an action.
// For status transitions From/To carry the application states.
type ActivityEvent struct {
	EventType  ActivityEventType `json:"event_type"`
	Actor      ActorRef          `json:"actor"`
	SubjectID  string            `json:"subject_id,omitempty"`
	From       string            `json:"from,omitempty"`
	To         string            `json:"to,omitempty"`
	Metadata   map[string]any    `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// The notifier collaborator subscribes through it; Record must not block
// request handling on slow consumers.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func actorFromPrincipal(p Principal) ActorRef {
	if p == nil {
		return ActorRef{Type: "unknown"}
	}
	return ActorRef{
		ID:   p.ID(),
		Kind: p.Role(),
		Type: "user",
	}
}
