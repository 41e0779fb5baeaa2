package portal_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portal "github.com/hiredesk/portal"
)

func TestJobAcceptsApplications(t *testing.T) {
	now := time.Now()
	recruiter := newRecruiter(true)

	t.Run("open without deadline", func(t *testing.T) {
		job := openJob(recruiter, nil)
		assert.True(t, job.AcceptsApplications(now))
	})

	t.Run("open with future deadline", func(t *testing.T) {
		future := now.Add(time.Hour)
		job := openJob(recruiter, &future)
		assert.True(t, job.AcceptsApplications(now))
	})

	t.Run("open with past deadline", func(t *testing.T) {
		past := now.Add(-time.Hour)
		job := openJob(recruiter, &past)
		assert.False(t, job.AcceptsApplications(now))
	})

	t.Run("closed", func(t *testing.T) {
		job := openJob(recruiter, nil)
		job.Status = portal.JobStatusClosed
		assert.False(t, job.AcceptsApplications(now))
	})
}

func TestApplicationStatus(t *testing.T) {
	assert.True(t, portal.ApplicationPending.IsValid())
	assert.True(t, portal.ApplicationApproved.IsValid())
	assert.True(t, portal.ApplicationRejected.IsValid())
	assert.False(t, portal.ApplicationStatus("archived").IsValid())

	assert.False(t, portal.ApplicationPending.IsDecision())
	assert.True(t, portal.ApplicationApproved.IsDecision())
	assert.True(t, portal.ApplicationRejected.IsDecision())

	status, ok := portal.ParseApplicationStatus("approved")
	assert.True(t, ok)
	assert.Equal(t, portal.ApplicationApproved, status)

	_, ok = portal.ParseApplicationStatus("maybe")
	assert.False(t, ok)
}

func TestApplicationEnsureStatus(t *testing.T) {
	app := &portal.Application{}
	app.EnsureStatus()
	assert.Equal(t, portal.ApplicationPending, app.Status)

	app.Status = portal.ApplicationApproved
	app.EnsureStatus()
	assert.Equal(t, portal.ApplicationApproved, app.Status)
}

func TestPrincipalSummaryOmitsCredentials(t *testing.T) {
	seeker := newSeeker(true)
	summary := portal.NewPrincipalSummary(seeker)

	assert.Equal(t, seeker.ID(), summary.ID)
	assert.Equal(t, seeker.FullName, summary.Name)
	assert.Equal(t, seeker.EmailAddr, summary.Email)
	assert.Equal(t, portal.RoleJobSeeker, summary.Role)
	assert.True(t, summary.Active)

	raw, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), seeker.PasswordHash)
}

func TestPrincipalJSONHidesHash(t *testing.T) {
	for _, p := range []portal.Principal{newSeeker(true), newRecruiter(true), newAdmin(true)} {
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), p.CredentialHash(), "principal %s", p.Role())
	}
}
