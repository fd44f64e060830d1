package repository

import (
	"testing"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRequest(id string) *model.PartnerRequest {
	return &model.PartnerRequest{
		RequestID:      id,
		CompanyName:    "신청몰",
		BusinessNumber: "123-45-67890",
		CeoName:        "김대표",
		ManagerName:    "이담당",
		ManagerPhone:   "010-1234-5678",
		ManagerEmail:   "m@example.com",
		ShopType:       "폐쇄몰",
		Status:         model.RequestStatusPending,
	}
}

func TestPartnerRequestRepository_ApproveFlow(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewPartnerRequestRepository(testDB)
	require.NoError(t, repo.Create(newTestRequest("PR-1")))

	pending, err := repo.FindAll(model.RequestStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	partner := newTestPartner("P-1", "신청몰", "")
	require.NoError(t, repo.Approve("PR-1", "admin", time.Now(), partner))
	assert.NotZero(t, partner.ID)

	req, err := repo.FindByRequestID("PR-1")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, req.Status)
	assert.Equal(t, "P-1", req.ApprovedPartnerID)
	assert.Equal(t, "admin", req.ReviewedBy)

	t.Run("Second approval refused", func(t *testing.T) {
		err := repo.Approve("PR-1", "admin", time.Now(), newTestPartner("P-2", "x", ""))
		assert.ErrorIs(t, err, ErrRequestNotPending)

		err = repo.Reject("PR-1", "admin", time.Now())
		assert.ErrorIs(t, err, ErrRequestNotPending)
	})

	t.Run("Unknown request", func(t *testing.T) {
		err := repo.Reject("PR-404", "admin", time.Now())
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestPartnerRequestRepository_ApproveRollsBackOnDuplicate(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewPartnerRequestRepository(testDB)
	partners := NewPartnerRepository(testDB)

	require.NoError(t, partners.Create(newTestPartner("P-1", "기존몰", "")))
	require.NoError(t, repo.Create(newTestRequest("PR-1")))

	dup := newTestPartner("P-2", "신청몰", "")
	dup.LoginID = "login-P-1"
	assert.Error(t, repo.Approve("PR-1", "admin", time.Now(), dup))

	req, err := repo.FindByRequestID("PR-1")
	require.NoError(t, err)
	assert.True(t, req.IsPending())
}

func TestPartnerRequestRepository_Reject(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewPartnerRequestRepository(testDB)
	require.NoError(t, repo.Create(newTestRequest("PR-1")))
	require.NoError(t, repo.Reject("PR-1", "ADMIN-001", time.Now()))

	req, err := repo.FindByRequestID("PR-1")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, req.Status)
	require.NotNil(t, req.ReviewedAt)

	rejected, err := repo.FindAll(model.RequestStatusRejected)
	require.NoError(t, err)
	assert.Len(t, rejected, 1)
}

func TestAdminRepository_FindByLogin(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewAdminRepository(testDB)
	require.NoError(t, repo.Upsert(&model.Admin{
		AdminID:      "ADMIN-001",
		AdminName:    "슈퍼관리자",
		Email:        "admin@sono.com",
		PasswordHash: "hash",
		Role:         model.AdminRoleSuper,
	}))

	byID, err := repo.FindByLogin("ADMIN-001")
	require.NoError(t, err)
	byEmail, err := repo.FindByLogin("admin@sono.com")
	require.NoError(t, err)
	assert.Equal(t, byID.AdminID, byEmail.AdminID)

	now := time.Now()
	require.NoError(t, repo.UpdateLastLogin("ADMIN-001", now))
	admin, err := repo.FindByAdminID("ADMIN-001")
	require.NoError(t, err)
	require.NotNil(t, admin.LastLogin)

	_, err = repo.FindByLogin("nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSettlementRepository_FindAll(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	repo := NewSettlementRepository(testDB)
	require.NoError(t, repo.Upsert(&model.Settlement{SettlementID: "S-1", PartnerID: "P-1", SettlementMonth: "2026-01"}))
	require.NoError(t, repo.Upsert(&model.Settlement{SettlementID: "S-2", PartnerID: "P-2", SettlementMonth: "2026-02"}))

	all, err := repo.FindAll(SettlementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-02", all[0].SettlementMonth)

	one, err := repo.FindAll(SettlementFilter{PartnerID: "P-1"})
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
