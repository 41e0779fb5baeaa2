package portal

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Auther verifies credentials against a single collection and mints a
// kind-tagged token on success.
type Auther struct {
	store        CredentialStore
	tokenService TokenService
	config       Config
	logger       Logger
	activitySink ActivitySink
	// loginRecorder runs after a successful login, e.g. to stamp
	// last_login_at. Failures are logged, never surfaced.
	loginRecorder func(ctx context.Context, identity Principal) error
}

// NewAuthenticator returns a new Auther wired to the given store.
func NewAuthenticator(store CredentialStore, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetIssuer(),
		jwt.ClaimStrings(opts.GetAudience()),
		defLogger{},
	)

	return &Auther{
		store:        store,
		tokenService: tokenService,
		config:       opts,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		[]byte(s.config.GetSigningKey()),
		s.config.GetIssuer(),
		jwt.ClaimStrings(s.config.GetAudience()),
		logger,
	)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithLoginRecorder configures a post-login bookkeeping hook.
func (s *Auther) WithLoginRecorder(fn func(ctx context.Context, identity Principal) error) *Auther {
	s.loginRecorder = fn
	return s
}

// TokenService returns the TokenService instance used by this Auther.
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login authenticates an email/password pair against exactly one
// collection. A wrong kind, missing record, or bad password all collapse
// into the same generic credentials error so responses reveal nothing
// about which emails are registered.
func (s *Auther) Login(ctx context.Context, kind Role, email, password string) (string, Principal, error) {
	if !kind.IsValid() {
		return "", nil, ErrInvalidCredentials
	}

	identity, err := s.verifyCredentials(ctx, kind, email, password)
	if err != nil {
		s.logger.Error("Login verify credentials error", "error", err, "kind", string(kind))
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown", Kind: kind}, "", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return "", nil, err
	}

	if !identity.Active() {
		s.logger.Warn("Login blocked, account deactivated", "kind", string(kind), "id", identity.ID())
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, actorFromPrincipal(identity), identity.ID(), map[string]any{
			"email": email,
			"error": ErrAccountDeactivated.Error(),
		})
		return "", nil, ErrAccountDeactivated
	}

	token, err := s.tokenService.Issue(identity, s.config.GetTokenTTL(kind))
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, actorFromPrincipal(identity), identity.ID(), map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return "", nil, err
	}

	if s.loginRecorder != nil {
		if err := s.loginRecorder(ctx, identity); err != nil {
			s.logger.Warn("Login recorder error", "error", err)
		}
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, actorFromPrincipal(identity), identity.ID(), map[string]any{
		"email": email,
	})

	return token, identity, nil
}

func (s *Auther) verifyCredentials(ctx context.Context, kind Role, email, password string) (Principal, error) {
	identity, err := s.store.FindPrincipalByEmail(ctx, kind, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "credential lookup failed")
	}
	if identity == nil {
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, identity.CredentialHash()); err != nil {
		return nil, ErrInvalidCredentials
	}

	return identity, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, subjectID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		SubjectID: subjectID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}
