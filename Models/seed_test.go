package Models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLoadsDemoData(t *testing.T) {
	db := newModelsTestDB(t)
	require.NoError(t, Seed(db))

	var admin User
	require.NoError(t, db.Where("role = ?", RoleAdmin).First(&admin).Error)
	assert.Equal(t, "admin@flotilla.pe", admin.Email)

	var drivers, vehicles, trips int64
	db.Model(&User{}).Where("role = ?", RoleDriver).Count(&drivers)
	db.Model(&Vehicle{}).Count(&vehicles)
	db.Model(&Trip{}).Where("end_time IS NOT NULL").Count(&trips)
	assert.Equal(t, int64(5), drivers)
	assert.Equal(t, int64(5), vehicles)
	assert.Equal(t, int64(50), trips)

	// Seeding twice must not duplicate anything.
	require.NoError(t, Seed(db))
	db.Model(&Vehicle{}).Count(&vehicles)
	assert.Equal(t, int64(5), vehicles)
}
