package portal_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portal "github.com/hiredesk/portal"
)

type testConfig struct {
	adminTTL time.Duration
	otherTTL time.Duration
}

func (c testConfig) GetSigningKey() string { return string(testSigningKey) }
func (c testConfig) GetIssuer() string     { return "portal-test" }
func (c testConfig) GetAudience() []string { return []string{"portal-api"} }

func (c testConfig) GetTokenTTL(kind portal.Role) time.Duration {
	if kind == portal.RoleAdmin {
		return c.adminTTL
	}
	return c.otherTTL
}

func newTestConfig() testConfig {
	return testConfig{adminTTL: 8 * time.Hour, otherTTL: 72 * time.Hour}
}

var (
	hashOnce     sync.Once
	testPassword = "correct horse battery"
	testHash     string
)

// bcrypt at our cost is slow, so every test shares one hash.
func hashedTestPassword(t *testing.T) string {
	t.Helper()
	hashOnce.Do(func() {
		h, err := portal.HashPassword(testPassword)
		if err != nil {
			t.Fatalf("hashing test password: %v", err)
		}
		testHash = h
	})
	return testHash
}

func seededStore(t *testing.T) (*fakeCredentialStore, *portal.JobSeeker, *portal.Recruiter, *portal.Administrator) {
	t.Helper()
	store := newFakeCredentialStore()

	hash := hashedTestPassword(t)

	seeker := newSeeker(true)
	seeker.PasswordHash = hash
	recruiter := newRecruiter(true)
	recruiter.PasswordHash = hash
	admin := newAdmin(true)
	admin.PasswordHash = hash

	store.add(seeker)
	store.add(recruiter)
	store.add(admin)

	return store, seeker, recruiter, admin
}

func TestLoginSuccess(t *testing.T) {
	store, seeker, _, _ := seededStore(t)
	sink := &memorySink{}

	recorded := 0
	auther := portal.NewAuthenticator(store, newTestConfig()).
		WithActivitySink(sink).
		WithLoginRecorder(func(ctx context.Context, identity portal.Principal) error {
			recorded++
			return nil
		})

	token, identity, err := auther.Login(context.Background(), portal.RoleJobSeeker, seeker.EmailAddr, testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, identity)
	assert.Equal(t, seeker.ID(), identity.ID())
	assert.Equal(t, 1, recorded)

	// The minted token carries the collection's kind tag.
	claims, err := auther.TokenService().Validate(token)
	require.NoError(t, err)
	assert.Equal(t, portal.RoleJobSeeker, claims.Kind())

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, portal.ActivityEventLoginSuccess, events[0].EventType)
	assert.Equal(t, seeker.ID(), events[0].SubjectID)
}

func TestLoginWrongPassword(t *testing.T) {
	store, seeker, _, _ := seededStore(t)
	sink := &memorySink{}

	auther := portal.NewAuthenticator(store, newTestConfig()).WithActivitySink(sink)

	_, _, err := auther.Login(context.Background(), portal.RoleJobSeeker, seeker.EmailAddr, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, portal.ErrInvalidCredentials)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, portal.ActivityEventLoginFailure, events[0].EventType)
}

func TestLoginUnknownEmail(t *testing.T) {
	store, _, _, _ := seededStore(t)

	auther := portal.NewAuthenticator(store, newTestConfig())

	_, _, err := auther.Login(context.Background(), portal.RoleJobSeeker, "nobody@example.com", testPassword)
	require.Error(t, err)
	assert.ErrorIs(t, err, portal.ErrInvalidCredentials)
}

func TestLoginWrongCollection(t *testing.T) {
	store, seeker, _, _ := seededStore(t)

	auther := portal.NewAuthenticator(store, newTestConfig())

	// Valid seeker credentials presented against the recruiter
	// collection fail with the same generic error as a wrong password.
	_, _, err := auther.Login(context.Background(), portal.RoleRecruiter, seeker.EmailAddr, testPassword)
	require.Error(t, err)
	assert.ErrorIs(t, err, portal.ErrInvalidCredentials)
}

func TestLoginInvalidKind(t *testing.T) {
	store, seeker, _, _ := seededStore(t)

	auther := portal.NewAuthenticator(store, newTestConfig())

	_, _, err := auther.Login(context.Background(), portal.Role("ghost"), seeker.EmailAddr, testPassword)
	require.Error(t, err)
	assert.ErrorIs(t, err, portal.ErrInvalidCredentials)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	store := newFakeCredentialStore()

	seeker := newSeeker(false)
	seeker.PasswordHash = hashedTestPassword(t)
	store.add(seeker)

	sink := &memorySink{}
	auther := portal.NewAuthenticator(store, newTestConfig()).WithActivitySink(sink)

	_, _, err := auther.Login(context.Background(), portal.RoleJobSeeker, seeker.EmailAddr, testPassword)
	require.Error(t, err)
	assert.ErrorIs(t, err, portal.ErrAccountDeactivated)

	events := sink.all()
	require.Len(t, events, 1)
	assert.Equal(t, portal.ActivityEventLoginFailure, events[0].EventType)
}

func TestLoginRecorderFailureIsNotFatal(t *testing.T) {
	store, seeker, _, _ := seededStore(t)

	auther := portal.NewAuthenticator(store, newTestConfig()).
		WithLoginRecorder(func(ctx context.Context, identity portal.Principal) error {
			return assert.AnError
		})

	token, _, err := auther.Login(context.Background(), portal.RoleJobSeeker, seeker.EmailAddr, testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginAdminTokenLifetime(t *testing.T) {
	store, _, _, admin := seededStore(t)

	cfg := newTestConfig()
	auther := portal.NewAuthenticator(store, cfg)

	token, _, err := auther.Login(context.Background(), portal.RoleAdmin, admin.EmailAddr, testPassword)
	require.NoError(t, err)

	claims, err := auther.TokenService().Validate(token)
	require.NoError(t, err)

	exp, err := claims.Expires()
	require.NoError(t, err)
	require.NotNil(t, exp)

	// Admin tokens expire on the short TTL, well inside the 72h default.
	assert.WithinDuration(t, time.Now().Add(cfg.adminTTL), *exp, time.Minute)
}
