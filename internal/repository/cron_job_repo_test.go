package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storebot/internal/models"
	"storebot/internal/pkg/testdb"
)

func TestCronJobLifecycle(t *testing.T) {
	repo := NewCronJobRepository(testdb.Open(t))

	notice := models.OrderNotice{OrderID: 1, Text: "hi"}
	job, err := repo.Enqueue(models.JobKindOrderCreated, "order:1", notice, []string{"10", "20", "10", ""})
	require.NoError(t, err)
	assert.Equal(t, 2, job.TotalItems)

	again, err := repo.Enqueue(models.JobKindOrderCreated, "order:1", notice, []string{"30"})
	require.NoError(t, err)
	assert.Equal(t, job.ID, again.ID, "active job with the same ref is reused")

	next, err := repo.NextActive(models.JobKindOrderCreated)
	require.NoError(t, err)
	assert.Equal(t, job.ID, next.ID)
	require.NoError(t, repo.MarkRunning(job.ID))

	items, err := repo.PendingItems(job.ID, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, repo.SettleItem(job.ID, items[0].ID, ""))
	require.NoError(t, repo.SettleItem(job.ID, items[0].ID, ""))

	finished, err := repo.Finish(job.ID)
	require.NoError(t, err)
	assert.False(t, finished, "one item is still pending")

	require.NoError(t, repo.SettleItem(job.ID, items[1].ID, "boom"))
	finished, err = repo.Finish(job.ID)
	require.NoError(t, err)
	assert.True(t, finished)

	job, err = repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, job.ProcessedItems)
	assert.Equal(t, 1, job.FailedItems)
	assert.Equal(t, "boom", job.LastError)
	assert.Equal(t, models.JobStatusDone, job.Status, "one target got the message")

	_, err = repo.NextActive(models.JobKindOrderCreated)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	purged, err := repo.PurgeFinished(time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)
	left, err := repo.ListItems(job.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestCronJobNextActivePrefersRunning(t *testing.T) {
	repo := NewCronJobRepository(testdb.Open(t))

	first, err := repo.Enqueue(models.JobKindOrderStatus, "a", models.OrderNotice{}, []string{"1"})
	require.NoError(t, err)
	second, err := repo.Enqueue(models.JobKindOrderStatus, "b", models.OrderNotice{}, []string{"1"})
	require.NoError(t, err)
	require.NoError(t, repo.MarkRunning(second.ID))

	next, err := repo.NextActive(models.JobKindOrderStatus)
	require.NoError(t, err)
	assert.Equal(t, second.ID, next.ID)

	require.NoError(t, repo.SettleItem(second.ID, mustPending(t, repo, second.ID), "blocked"))
	finished, err := repo.Finish(second.ID)
	require.NoError(t, err)
	require.True(t, finished)
	got, err := repo.FindByID(second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)

	next, err = repo.NextActive(models.JobKindOrderStatus)
	require.NoError(t, err)
	assert.Equal(t, first.ID, next.ID)
}

func mustPending(t *testing.T, repo *CronJobRepository, jobID uint) uint {
	t.Helper()
	items, err := repo.PendingItems(jobID, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	return items[0].ID
}
