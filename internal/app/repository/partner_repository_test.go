package repository

import (
	"testing"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPartnerTest(t *testing.T) (*gorm.DB, PartnerRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	return testDB, NewPartnerRepository(testDB)
}

func newTestPartner(id, company, parent string) *model.Partner {
	return &model.Partner{
		PartnerID:       id,
		CompanyName:     company,
		CeoName:         "대표 " + id,
		CustomURL:       "url-" + id,
		LoginID:         "login-" + id,
		PasswordHash:    "hash",
		Status:          model.PartnerStatusActive,
		ParentPartnerID: parent,
		BrandColor:      model.DefaultBrandColor,
	}
}

func TestPartnerRepository_Create(t *testing.T) {
	testDB, repo := setupPartnerTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newTestPartner("P-1", "가나몰", "")))

	tests := []struct {
		name   string
		mutate func(p *model.Partner)
	}{
		{"Duplicate partnerId", func(p *model.Partner) { p.CustomURL = "other"; p.LoginID = "other" }},
		{"Duplicate loginId", func(p *model.Partner) { p.PartnerID = "P-2"; p.CustomURL = "other"; p.LoginID = "login-P-1" }},
		{"Duplicate customUrl", func(p *model.Partner) { p.PartnerID = "P-3"; p.LoginID = "other"; p.CustomURL = "url-P-1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPartner("P-1", "중복", "")
			tt.mutate(p)
			assert.Error(t, repo.Create(p))
		})
	}
}

func TestPartnerRepository_FindBy(t *testing.T) {
	testDB, repo := setupPartnerTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newTestPartner("P-1", "가나몰", "")))

	found, err := repo.FindByPartnerID("P-1")
	require.NoError(t, err)
	assert.Equal(t, "가나몰", found.CompanyName)

	found, err = repo.FindByLoginID("login-P-1")
	require.NoError(t, err)
	assert.Equal(t, "P-1", found.PartnerID)

	found, err = repo.FindByCustomURL("url-P-1")
	require.NoError(t, err)
	assert.Equal(t, "P-1", found.PartnerID)

	_, err = repo.FindByPartnerID("P-404")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPartnerRepository_UpdateAndDelete(t *testing.T) {
	testDB, repo := setupPartnerTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newTestPartner("P-1", "가나몰", "")))

	ok, err := repo.Update("P-1", map[string]interface{}{"point_info": "5만 포인트"})
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindByPartnerID("P-1")
	require.NoError(t, err)
	assert.Equal(t, "5만 포인트", found.PointInfo)
	assert.Equal(t, "가나몰", found.CompanyName)

	ok, err = repo.Update("P-404", map[string]interface{}{"point_info": "x"})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete("P-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete("P-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPartnerRepository_Search(t *testing.T) {
	testDB, repo := setupPartnerTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newTestPartner("P-1", "데모 쇼핑몰", "")))
	require.NoError(t, repo.Create(newTestPartner("P-2", "행복몰", "")))
	inactive := newTestPartner("P-3", "휴면몰", "")
	inactive.Status = model.PartnerStatusInactive
	require.NoError(t, repo.Create(inactive))
	upper := newTestPartner("P-4", "ABC Mall", "")
	require.NoError(t, repo.Create(upper))

	results, err := repo.Search("몰", 20)
	require.NoError(t, err)
	names := make([]string, 0, len(results))
	for _, p := range results {
		names = append(names, p.CompanyName)
	}
	assert.ElementsMatch(t, []string{"데모 쇼핑몰", "행복몰"}, names)

	results, err = repo.Search("abc", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "P-4", results[0].PartnerID)

	// 대표자명
	results, err = repo.Search("대표 P-2", 20)
	require.NoError(t, err)
	require.Len(t, results, 1)

	// LIKE 와일드카드는 문자 그대로
	results, err = repo.Search("%", 20)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = repo.Search("몰", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestPartnerRepository_Hierarchy(t *testing.T) {
	testDB, repo := setupPartnerTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newTestPartner("P-A", "A몰", "")))
	require.NoError(t, repo.Create(newTestPartner("P-B", "B몰", "P-A")))
	require.NoError(t, repo.Create(newTestPartner("P-C", "C몰", "P-B")))

	children, err := repo.ListChildIDs("P-A")
	require.NoError(t, err)
	assert.Equal(t, []string{"P-B"}, children)

	count, err := repo.CountChildren("P-B")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	all, err := repo.ListPartnerIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"P-A", "P-B", "P-C"}, all)
}

func TestPartnerRepository_SyncFlags(t *testing.T) {
	testDB, repo := setupPartnerTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Create(newTestPartner("P-1", "가몰", "")))
	require.NoError(t, repo.Create(newTestPartner("P-2", "나몰", "")))

	unsynced, err := repo.FindUnsynced(10)
	require.NoError(t, err)
	require.Len(t, unsynced, 2)

	marked, err := repo.MarkSynced("P-1", unsynced[0].SyncVersion)
	require.NoError(t, err)
	assert.True(t, marked)

	unsynced, err = repo.FindUnsynced(10)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, "P-2", unsynced[0].PartnerID)

	t.Run("Write after read keeps the row unsynced", func(t *testing.T) {
		read := unsynced[0]
		ok, err := repo.Update("P-2", map[string]interface{}{"company_name": "새이름몰"})
		require.NoError(t, err)
		require.True(t, ok)

		marked, err := repo.MarkSynced("P-2", read.SyncVersion)
		require.NoError(t, err)
		assert.False(t, marked)

		again, err := repo.FindUnsynced(10)
		require.NoError(t, err)
		require.Len(t, again, 1)
		assert.Equal(t, "새이름몰", again[0].CompanyName)
		assert.Equal(t, read.SyncVersion+1, again[0].SyncVersion)

		marked, err = repo.MarkSynced("P-2", again[0].SyncVersion)
		require.NoError(t, err)
		assert.True(t, marked)
	})

	t.Run("Update marks a synced row dirty", func(t *testing.T) {
		_, err := repo.Update("P-1", map[string]interface{}{"logo_text": "가"})
		require.NoError(t, err)

		p, err := repo.FindByPartnerID("P-1")
		require.NoError(t, err)
		assert.False(t, p.SheetSynced)
	})
}

func TestPartnerRepository_Upsert(t *testing.T) {
	testDB, repo := setupPartnerTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.Upsert(newTestPartner("P-1", "가몰", "")))

	again := newTestPartner("P-1", "가몰 리뉴얼", "")
	require.NoError(t, repo.Upsert(again))

	found, err := repo.FindByPartnerID("P-1")
	require.NoError(t, err)
	assert.Equal(t, "가몰 리뉴얼", found.CompanyName)

	var count int64
	require.NoError(t, testDB.Model(&model.Partner{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
