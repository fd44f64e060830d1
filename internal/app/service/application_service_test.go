package service

import (
	"strings"
	"testing"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationService_Create(t *testing.T) {
	env := setupServiceTest(t)
	parent := env.addPartner(t, "P-PARENT", "상위몰", "", model.PartnerStatusActive)
	p := env.addPartner(t, "P-1", "행복몰", parent.PartnerID, model.PartnerStatusActive)

	app, err := env.applications.Create(CreateApplicationInput{
		PartnerID:     p.CustomURL, // 랜딩 페이지는 전용 URL 을 보낸다
		ProductType:   "smartcare",
		Name:          " 홍길동 ",
		Phone:         "01012345678",
		Address:       "서울시 강남구",
		AddressDetail: "101호",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(app.ApplicationNo, "SA-"))
	assert.Len(t, app.ApplicationNo, len("SA-20260101-0000"))
	assert.Equal(t, p.PartnerID, app.PartnerID)
	assert.Equal(t, "행복몰", app.PartnerName)
	assert.Equal(t, model.StatusReceived, app.Status)
	assert.Equal(t, model.DefaultPlanType, app.PlanType)
	assert.Equal(t, "-", app.CustomerGender)
	assert.Equal(t, "홍길동", app.CustomerName)
	assert.Equal(t, "010-1234-5678", app.CustomerPhone)
	assert.Equal(t, "서울시 강남구 101호", app.CustomerAddress)

	require.Len(t, env.events.events, 1)
	event := env.events.events[0]
	assert.Equal(t, EventNewApplication, event.Type)
	assert.ElementsMatch(t, []string{p.PartnerID, parent.PartnerID}, event.PartnerIDs)
}

func TestApplicationService_Create_Errors(t *testing.T) {
	env := setupServiceTest(t)
	env.addPartner(t, "P-1", "활성몰", "", model.PartnerStatusActive)
	env.addPartner(t, "P-2", "비활성몰", "", model.PartnerStatusInactive)

	tests := []struct {
		name  string
		input CreateApplicationInput
		want  error
	}{
		{"Missing phone", CreateApplicationInput{PartnerID: "P-1", ProductType: "happy450", Name: "a"}, ErrMissingRequiredFields},
		{"Missing partner", CreateApplicationInput{ProductType: "happy450", Name: "a", Phone: "010"}, ErrMissingRequiredFields},
		{"Unknown product", CreateApplicationInput{PartnerID: "P-1", ProductType: "tv", Name: "a", Phone: "010"}, ErrInvalidProduct},
		{"Unknown partner", CreateApplicationInput{PartnerID: "P-X", ProductType: "happy450", Name: "a", Phone: "010"}, ErrPartnerNotFound},
		{"Inactive partner", CreateApplicationInput{PartnerID: "P-2", ProductType: "happy450", Name: "a", Phone: "010"}, ErrPartnerInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.applications.Create(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	env := setupServiceTest(t)
	p := env.addPartner(t, "P-1", "행복몰", "", model.PartnerStatusActive)
	app := env.addApplication(t, p.PartnerID, "홍길동")
	admin := Scope{All: true}

	updated, err := env.applications.UpdateStatus(admin, app.ApplicationNo, model.StatusConsulting, "ADMIN-001", "첫 통화")
	require.NoError(t, err)
	assert.Equal(t, model.StatusConsulting, updated.Status)
	assert.Nil(t, updated.ContractDate)

	// 같은 상태로 다시 설정해도 이력은 추가된다
	_, err = env.applications.UpdateStatus(admin, app.ApplicationNo, model.StatusConsulting, "ADMIN-001", "재통화")
	require.NoError(t, err)

	updated, err = env.applications.UpdateStatus(admin, app.ApplicationNo, model.StatusContracted, "ADMIN-001", "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusContracted, updated.Status)
	require.NotNil(t, updated.ContractDate)

	history, err := env.applications.History(admin, app.ApplicationNo)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, model.StatusReceived, history[0].PreviousStatus)
	assert.Equal(t, model.StatusConsulting, history[0].NewStatus)
	assert.Equal(t, "첫 통화", history[0].Memo)
	assert.Equal(t, model.StatusConsulting, history[1].PreviousStatus)
	assert.Equal(t, model.StatusConsulting, history[1].NewStatus)
	assert.Equal(t, model.StatusContracted, history[2].NewStatus)
	for _, h := range history {
		assert.True(t, strings.HasPrefix(h.HistoryID, "H-"))
	}

	assert.Contains(t, env.events.Types(), EventStatusChanged)
}

func TestApplicationService_UpdateStatus_NotifiesParent(t *testing.T) {
	env := setupServiceTest(t)
	parent := env.addPartner(t, "P-PARENT", "본점몰", "", model.PartnerStatusActive)
	child := env.addPartner(t, "P-CHILD", "지점몰", parent.PartnerID, model.PartnerStatusActive)
	app := env.addApplication(t, child.PartnerID, "홍길동")

	_, err := env.applications.UpdateStatus(Scope{All: true}, app.ApplicationNo, model.StatusConsulting, "ADMIN-001", "")
	require.NoError(t, err)

	require.NotEmpty(t, env.events.events)
	event := env.events.events[len(env.events.events)-1]
	assert.Equal(t, EventStatusChanged, event.Type)
	assert.ElementsMatch(t, []string{child.PartnerID, parent.PartnerID}, event.PartnerIDs)
}

func TestApplicationService_UpdateStatus_Errors(t *testing.T) {
	env := setupServiceTest(t)
	p := env.addPartner(t, "P-1", "행복몰", "", model.PartnerStatusActive)
	other := env.addPartner(t, "P-2", "남의몰", "", model.PartnerStatusActive)
	app := env.addApplication(t, p.PartnerID, "홍길동")

	tests := []struct {
		name   string
		scope  Scope
		no     string
		status model.ApplicationStatus
		want   error
	}{
		{"Unknown status", Scope{All: true}, app.ApplicationNo, "완료", ErrInvalidStatus},
		{"Legacy status", Scope{All: true}, app.ApplicationNo, model.StatusContractCancelled, ErrInvalidStatus},
		{"Skipping steps", Scope{All: true}, app.ApplicationNo, model.StatusSettled, ErrInvalidStatusTransition},
		{"Not found", Scope{All: true}, "SA-00000000-0000", model.StatusConsulting, ErrApplicationNotFound},
		{"Other partner", Scope{PartnerIDs: []string{other.PartnerID}}, app.ApplicationNo, model.StatusConsulting, ErrOutOfScope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.applications.UpdateStatus(tt.scope, tt.no, tt.status, "tester", "")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	history, err := env.applications.History(Scope{All: true}, app.ApplicationNo)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestApplicationService_List(t *testing.T) {
	env := setupServiceTest(t)
	a := env.addPartner(t, "P-A", "에이몰", "", model.PartnerStatusActive)
	b := env.addPartner(t, "P-B", "비몰", a.PartnerID, model.PartnerStatusActive)
	c := env.addPartner(t, "P-C", "씨몰", "", model.PartnerStatusActive)
	env.addApplication(t, a.PartnerID, "김철수")
	env.addApplication(t, b.PartnerID, "이영희")
	env.addApplication(t, c.PartnerID, "박민수")

	scopeA, err := env.partners.ScopeOf(a.PartnerID)
	require.NoError(t, err)

	t.Run("Admin sees all", func(t *testing.T) {
		page, err := env.applications.List(Scope{All: true}, ApplicationQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, defaultPageSize, page.PageSize)
	})

	t.Run("Admin sentinel filter sees all", func(t *testing.T) {
		page, err := env.applications.List(Scope{All: true}, ApplicationQuery{PartnerID: model.AdminParentID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
	})

	t.Run("Partner sees self and children", func(t *testing.T) {
		page, err := env.applications.List(scopeA, ApplicationQuery{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("Partner filter within scope", func(t *testing.T) {
		page, err := env.applications.List(scopeA, ApplicationQuery{PartnerID: b.PartnerID})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "이영희", page.Items[0].CustomerName)
	})

	t.Run("Partner filter outside scope", func(t *testing.T) {
		_, err := env.applications.List(scopeA, ApplicationQuery{PartnerID: c.PartnerID})
		assert.ErrorIs(t, err, ErrOutOfScope)
	})

	t.Run("Search", func(t *testing.T) {
		page, err := env.applications.List(Scope{All: true}, ApplicationQuery{Q: "씨몰"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("Status filter", func(t *testing.T) {
		page, err := env.applications.List(Scope{All: true}, ApplicationQuery{Status: string(model.StatusConsulting)})
		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
		assert.NotNil(t, page.Items)
	})

	t.Run("Invalid period", func(t *testing.T) {
		_, err := env.applications.List(Scope{All: true}, ApplicationQuery{From: "2026/01/01"})
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("Paging", func(t *testing.T) {
		page, err := env.applications.List(Scope{All: true}, ApplicationQuery{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 1)
	})
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	from, to, err := periodRange(now, "3months", "", "")
	require.NoError(t, err)
	require.NotNil(t, from)
	assert.Nil(t, to)
	assert.Equal(t, time.December, from.Month())

	from, to, err = periodRange(now, "", "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, 1, from.Day())
	assert.Equal(t, time.February, to.Month())
	assert.Equal(t, 1, to.Day())

	_, _, err = periodRange(now, "", "2026-02-01", "2026-01-01")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	_, _, err = periodRange(now, "decade", "", "")
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	from, to, err = periodRange(now, "all", "", "")
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestApplicationService_UpdateAssignee(t *testing.T) {
	env := setupServiceTest(t)
	p := env.addPartner(t, "P-1", "행복몰", "", model.PartnerStatusActive)
	app := env.addApplication(t, p.PartnerID, "홍길동")

	ok, err := env.applications.UpdateAssignee(app.ApplicationNo, "상담원A")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := env.applications.Get(Scope{All: true}, app.ApplicationNo)
	require.NoError(t, err)
	assert.Equal(t, "상담원A", got.AssignedTo)

	ok, err = env.applications.UpdateAssignee("SA-NONE", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}
