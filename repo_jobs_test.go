package portal_test

import (
	"context"
	"testing"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	portal "github.com/hiredesk/portal"
)

func postJob(t *testing.T, repo portal.RepositoryManager, deadline *time.Time) *portal.Job {
	t.Helper()

	job, err := repo.Jobs().Post(context.Background(), &portal.Job{
		Title:        "Backend Engineer",
		Location:     "Remote",
		Deadline:     deadline,
		PostedByID:   uuid.New(),
		PostedByKind: portal.RoleRecruiter,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, job.JobID)

	return job
}

func TestJobsDeleteByID(t *testing.T) {
	repo, cleanup := setupRepositoryManager(t)
	defer cleanup()

	ctx := context.Background()
	job := postJob(t, repo, nil)

	require.NoError(t, repo.Jobs().DeleteByID(ctx, job.JobID))

	_, err := repo.Jobs().GetByID(ctx, job.JobID.String())
	assert.True(t, repository.IsRecordNotFound(err))
}

func TestJobsCloseExpired(t *testing.T) {
	repo, cleanup := setupRepositoryManager(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	expired := postJob(t, repo, &past)
	open := postJob(t, repo, &future)
	noDeadline := postJob(t, repo, nil)

	closed, err := repo.Jobs().CloseExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	got, err := repo.Jobs().GetByID(ctx, expired.JobID.String())
	require.NoError(t, err)
	assert.Equal(t, portal.JobStatusClosed, got.Status)

	got, err = repo.Jobs().GetByID(ctx, open.JobID.String())
	require.NoError(t, err)
	assert.Equal(t, portal.JobStatusOpen, got.Status)

	got, err = repo.Jobs().GetByID(ctx, noDeadline.JobID.String())
	require.NoError(t, err)
	assert.Equal(t, portal.JobStatusOpen, got.Status)

	t.Run("nothing left to close", func(t *testing.T) {
		closed, err := repo.Jobs().CloseExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 0, closed)
	})
}
