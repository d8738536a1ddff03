package bootstrap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storebot/internal/bootstrap"
	"storebot/internal/models"
	"storebot/internal/pkg/testdb"
)

func TestMigrateAndSeedIsIdempotent(t *testing.T) {
	db := testdb.Open(t)

	require.NoError(t, bootstrap.MigrateAndSeed(db, 777))
	require.NoError(t, bootstrap.MigrateAndSeed(db, 777))

	var statuses []models.OrderStatus
	require.NoError(t, db.Order("id ASC").Find(&statuses).Error)
	require.Len(t, statuses, 3)
	assert.Equal(t, models.OrderStatusInProgress, statuses[0].Name)

	var admin models.Admin
	require.NoError(t, db.First(&admin, 777).Error)
	assert.Equal(t, int64(777), admin.NotifyChat())
}

func TestSeedDemoIsIdempotent(t *testing.T) {
	db := testdb.OpenDemo(t)

	var before int64
	require.NoError(t, db.Model(&models.Product{}).Count(&before).Error)
	require.NotZero(t, before)

	require.NoError(t, bootstrap.SeedDemo(db))

	var after int64
	require.NoError(t, db.Model(&models.Product{}).Count(&after).Error)
	assert.Equal(t, before, after)

	var universal int64
	require.NoError(t, db.Model(&models.Product{}).Where("device_model_id IS NULL").Count(&universal).Error)
	assert.NotZero(t, universal, "demo catalog has device-independent accessories")
}
