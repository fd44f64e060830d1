package db

import (
	"testing"

	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedInitialData_Idempotent(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	cfg := config.SeedConfig{AdminPassword: "admin1234", DemoPartnerPassword: "demo1234"}

	first, err := SeedInitialData(testDB, cfg)
	require.NoError(t, err)
	assert.True(t, first.AdminCreated)
	assert.True(t, first.DemoPartnerCreated)

	second, err := SeedInitialData(testDB, cfg)
	require.NoError(t, err)
	assert.False(t, second.AdminCreated)
	assert.False(t, second.DemoPartnerCreated)

	var admin model.Admin
	require.NoError(t, testDB.Where("admin_id = ?", SeedAdminID).First(&admin).Error)
	assert.Equal(t, model.AdminRoleSuper, admin.Role)
	assert.NotEqual(t, "admin1234", admin.PasswordHash)
	assert.True(t, util.VerifyPassword(admin.PasswordHash, "admin1234"))

	var partner model.Partner
	require.NoError(t, testDB.Where("custom_url = ?", SeedDemoCustomURL).First(&partner).Error)
	assert.Equal(t, SeedDemoPartnerID, partner.PartnerID)
	assert.Equal(t, model.PartnerStatusActive, partner.Status)
	assert.Equal(t, "계약 시 최대 30만 포인트 지급", partner.PointInfo)
	assert.True(t, util.VerifyPassword(partner.PasswordHash, "demo1234"))
}

func TestSeedInitialData_EmptyPassword(t *testing.T) {
	testDB, err := SetupTestDB()
	require.NoError(t, err)
	defer CleanupTestDB(testDB)

	_, err = SeedInitialData(testDB, config.SeedConfig{})
	assert.Error(t, err)
}
