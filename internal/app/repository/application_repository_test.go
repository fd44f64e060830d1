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

func setupApplicationTest(t *testing.T) (*gorm.DB, ApplicationRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	return testDB, NewApplicationRepository(testDB)
}

func newTestApplication(no, partnerID, customer string, createdAt time.Time) *model.Application {
	return &model.Application{
		ApplicationNo: no,
		PartnerID:     partnerID,
		PartnerName:   partnerID + " 몰",
		ProductType:   model.ProductHappy450,
		PlanType:      model.DefaultPlanType,
		CustomerName:  customer,
		CustomerPhone: "010-1111-2222",
		Status:        model.StatusReceived,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestApplicationRepository_CreateDuplicateNo(t *testing.T) {
	testDB, repo := setupApplicationTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	require.NoError(t, repo.Create(newTestApplication("SA-20260101-0001", "P-1", "김고객", now)))
	assert.Error(t, repo.Create(newTestApplication("SA-20260101-0001", "P-1", "이고객", now)))
}

func TestApplicationRepository_FindAll(t *testing.T) {
	testDB, repo := setupApplicationTest(t)
	defer db.CleanupTestDB(testDB)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(newTestApplication("SA-1", "P-1", "김철수", base.Add(-48*time.Hour))))
	require.NoError(t, repo.Create(newTestApplication("SA-2", "P-2", "이영희", base.Add(-24*time.Hour))))
	third := newTestApplication("SA-3", "P-1", "박민수", base)
	third.Status = model.StatusConsulting
	require.NoError(t, repo.Create(third))

	t.Run("All newest first", func(t *testing.T) {
		apps, total, err := repo.FindAll(model.ApplicationFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, apps, 3)
		assert.Equal(t, "SA-3", apps[0].ApplicationNo)
		assert.Equal(t, "SA-1", apps[2].ApplicationNo)
	})

	t.Run("Partner scope", func(t *testing.T) {
		apps, total, err := repo.FindAll(model.ApplicationFilter{PartnerIDs: []string{"P-1"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, apps, 2)
	})

	t.Run("Status", func(t *testing.T) {
		apps, _, err := repo.FindAll(model.ApplicationFilter{Status: model.StatusConsulting})
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, "SA-3", apps[0].ApplicationNo)
	})

	t.Run("Search", func(t *testing.T) {
		apps, _, err := repo.FindAll(model.ApplicationFilter{Search: "영희"})
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, "SA-2", apps[0].ApplicationNo)
	})

	t.Run("Date range", func(t *testing.T) {
		from := base.Add(-30 * time.Hour)
		to := base.Add(-1 * time.Hour)
		apps, _, err := repo.FindAll(model.ApplicationFilter{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, "SA-2", apps[0].ApplicationNo)
	})

	t.Run("Paging", func(t *testing.T) {
		apps, total, err := repo.FindAll(model.ApplicationFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, apps, 1)
		assert.Equal(t, "SA-1", apps[0].ApplicationNo)
	})
}

func TestApplicationRepository_ApplyStatusChange(t *testing.T) {
	testDB, repo := setupApplicationTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	require.NoError(t, repo.Create(newTestApplication("SA-1", "P-1", "김철수", now)))
	marked, err := repo.MarkSynced("SA-1", 0)
	require.NoError(t, err)
	require.True(t, marked)

	err = repo.ApplyStatusChange(StatusChange{
		ApplicationNo: "SA-1",
		From:          model.StatusReceived,
		To:            model.StatusContracted,
		Milestones:    map[string]interface{}{"contract_date": now},
		At:            now,
		History: &model.StatusHistory{
			HistoryID:      "H-1",
			ApplicationNo:  "SA-1",
			PreviousStatus: model.StatusReceived,
			NewStatus:      model.StatusContracted,
			ChangedBy:      "admin",
			ChangedAt:      now,
		},
	})
	require.NoError(t, err)

	app, err := repo.FindByNo("SA-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusContracted, app.Status)
	require.NotNil(t, app.ContractDate)
	assert.False(t, app.SheetSynced)
	assert.Equal(t, int64(1), app.SyncVersion)

	history, err := repo.FindHistory("SA-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.StatusReceived, history[0].PreviousStatus)

	t.Run("Stale from status rolls back", func(t *testing.T) {
		err := repo.ApplyStatusChange(StatusChange{
			ApplicationNo: "SA-1",
			From:          model.StatusReceived,
			To:            model.StatusConsulting,
			At:            now,
			History:       &model.StatusHistory{HistoryID: "H-2", ApplicationNo: "SA-1", ChangedAt: now},
		})
		assert.ErrorIs(t, err, ErrStaleStatus)

		history, err := repo.FindHistory("SA-1")
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})
}

func TestApplicationRepository_Counts(t *testing.T) {
	testDB, repo := setupApplicationTest(t)
	defer db.CleanupTestDB(testDB)

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	require.NoError(t, repo.Create(newTestApplication("SA-1", "P-1", "가", now)))
	old := newTestApplication("SA-2", "P-2", "나", now.AddDate(-1, 0, 0))
	old.Status = model.StatusRejected
	require.NoError(t, repo.Create(old))
	contracted := newTestApplication("SA-3", "P-1", "다", now)
	contracted.Status = model.StatusContracted
	contracted.ContractDate = &now
	require.NoError(t, repo.Create(contracted))

	total, err := repo.CountTotal(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	scoped, err := repo.CountTotal([]string{"P-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), scoped)

	today, err := repo.CountCreatedSince(nil, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), today)

	inProgress, err := repo.CountNotInStatuses(model.ClosedStatuses())
	require.NoError(t, err)
	assert.Equal(t, int64(1), inProgress)

	monthly, err := repo.CountContractedSince([]string{"P-1"}, monthStart)
	require.NoError(t, err)
	assert.Equal(t, int64(1), monthly)

	byPartner, err := repo.CountByPartnerID("P-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), byPartner)
}

func TestApplicationRepository_ReassignPartner(t *testing.T) {
	testDB, repo := setupApplicationTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newTestApplication("SA-1", "demo", "가", time.Now())))

	n, err := repo.ReassignPartner("demo", "P-DEMO-001")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	app, err := repo.FindByNo("SA-1")
	require.NoError(t, err)
	assert.Equal(t, "P-DEMO-001", app.PartnerID)
}
