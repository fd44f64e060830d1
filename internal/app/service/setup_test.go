package service

import (
	"sync"
	"testing"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/internal/db"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingPublisher 발행된 이벤트를 모아 둔다
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type countingTrigger struct {
	mu      sync.Mutex
	count   int
	removed []string
}

func (t *countingTrigger) Trigger() {
	t.mu.Lock()
	t.count++
	t.mu.Unlock()
}

func (t *countingTrigger) PartnerRemoved(partnerID string) {
	t.mu.Lock()
	t.removed = append(t.removed, partnerID)
	t.mu.Unlock()
}

type testEnv struct {
	db              *gorm.DB
	partnerRepo     repository.PartnerRepository
	applicationRepo repository.ApplicationRepository
	requestRepo     repository.PartnerRequestRepository
	adminRepo       repository.AdminRepository
	events          *recordingPublisher
	trigger         *countingTrigger

	partners     PartnerService
	requests     PartnerRequestService
	applications ApplicationService
	dashboard    DashboardService
}

func setupServiceTest(t *testing.T) *testEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	env := &testEnv{
		db:              testDB,
		partnerRepo:     repository.NewPartnerRepository(testDB),
		applicationRepo: repository.NewApplicationRepository(testDB),
		requestRepo:     repository.NewPartnerRequestRepository(testDB),
		adminRepo:       repository.NewAdminRepository(testDB),
		events:          &recordingPublisher{},
		trigger:         &countingTrigger{},
	}
	env.partners = NewPartnerService(env.partnerRepo, env.applicationRepo, env.trigger)
	env.requests = NewPartnerRequestService(env.requestRepo, env.partnerRepo, nil, env.events, env.trigger)
	env.applications = NewApplicationService(env.applicationRepo, env.partners, env.events, env.trigger)
	env.dashboard = NewDashboardService(env.partnerRepo, env.applicationRepo, env.requestRepo, env.partners)
	return env
}

const testPassword = "pw-test"

var (
	testHashOnce sync.Once
	testHash     string
)

// testPasswordHash bcrypt 는 느리므로 한 번만 만든다
func testPasswordHash(t *testing.T) string {
	testHashOnce.Do(func() {
		hash, err := util.HashPassword(testPassword)
		require.NoError(t, err)
		testHash = hash
	})
	return testHash
}

// addPartner 비밀번호는 testPassword
func (env *testEnv) addPartner(t *testing.T, id, company, parent string, status model.PartnerStatus) *model.Partner {
	hash := testPasswordHash(t)
	p := &model.Partner{
		PartnerID:       id,
		CompanyName:     company,
		CeoName:         "대표" + id,
		CustomURL:       "url-" + id,
		LoginID:         "login-" + id,
		PasswordHash:    hash,
		Status:          status,
		ParentPartnerID: parent,
		BrandColor:      model.DefaultBrandColor,
	}
	require.NoError(t, env.partnerRepo.Create(p))
	return p
}

func (env *testEnv) addApplication(t *testing.T, partnerID, customer string) *model.Application {
	app, err := env.applications.Create(CreateApplicationInput{
		PartnerID:   partnerID,
		ProductType: string(model.ProductHappy450),
		Name:        customer,
		Phone:       "01012345678",
	})
	require.NoError(t, err)
	return app
}

func partnerSessionFor(p *model.Partner) *model.Session {
	s := partnerSession(p)
	return &s
}

func adminTestSession() *model.Session {
	return &model.Session{PartnerID: "ADMIN-001", Name: "관리자", CustomURL: "admin", Level: model.RoleAdmin}
}

func strPtr(s string) *string {
	return &s
}
