package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/db"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/ikkim/sangjo-partner-backend/pkg/redis"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "pw-test"
)

var (
	hashOnce sync.Once
	hash     string
)

func testPasswordHash(t *testing.T) string {
	hashOnce.Do(func() {
		h, err := util.HashPassword(testPassword)
		require.NoError(t, err)
		hash = h
	})
	return hash
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB

	partnerRepo     repository.PartnerRepository
	applicationRepo repository.ApplicationRepository
	requestRepo     repository.PartnerRequestRepository

	auth         service.AuthService
	partners     service.PartnerService
	requests     service.PartnerRequestService
	applications service.ApplicationService
}

// setupControllerTest 실제 서비스와 sqlite 로 라우트를 구성한다. 시트/카탈로그/S3 는 꺼져 있다
func setupControllerTest(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	require.NoError(t, util.RegisterValidators())

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	ts := &testServer{
		db:              testDB,
		partnerRepo:     repository.NewPartnerRepository(testDB),
		applicationRepo: repository.NewApplicationRepository(testDB),
		requestRepo:     repository.NewPartnerRequestRepository(testDB),
	}
	adminRepo := repository.NewAdminRepository(testDB)
	require.NoError(t, adminRepo.Upsert(&model.Admin{
		AdminID:      "ADMIN-001",
		AdminName:    "슈퍼관리자",
		Email:        "admin@sono.com",
		PasswordHash: testPasswordHash(t),
		Role:         model.AdminRoleSuper,
	}))

	blacklist := redis.NewTokenBlacklist()
	ts.auth = service.NewAuthService(ts.partnerRepo, adminRepo, blacklist, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	ts.partners = service.NewPartnerService(ts.partnerRepo, ts.applicationRepo, nil)
	ts.requests = service.NewPartnerRequestService(ts.requestRepo, ts.partnerRepo, nil, nil, nil)
	ts.applications = service.NewApplicationService(ts.applicationRepo, ts.partners, nil, nil)
	dashboard := service.NewDashboardService(ts.partnerRepo, ts.applicationRepo, ts.requestRepo, ts.partners)
	mirror := service.NewSheetMirrorService(nil, ts.partnerRepo, ts.applicationRepo, ts.requestRepo, adminRepo)

	authCtrl := NewAuthController(ts.auth)
	partnerCtrl := NewPartnerController(ts.partners, ts.requests)
	appCtrl := NewApplicationController(ts.applications, ts.partners, service.NewExportService(ts.applications))
	dashboardCtrl := NewDashboardController(dashboard)
	systemCtrl := NewSystemController(testDB, mirror, config.SheetsConfig{ServiceAccountEmail: "svc@example.com"}, config.SeedConfig{
		AdminPassword:       "admin-pw",
		DemoPartnerPassword: "demo-pw",
	})

	authMW := middleware.NewAuthMiddleware(testJWTSecret, blacklist, ts.auth)
	authenticate := authMW.Authenticate()
	adminOnly := authMW.RequireRole("admin")

	r := gin.New()
	r.GET("/api/ping", systemCtrl.Ping)
	r.POST("/api/partner-center/login", authCtrl.PartnerCenterLogin)
	r.POST("/api/admin/login", authCtrl.AdminLogin)
	r.POST("/api/auth/refresh", authCtrl.Refresh)
	r.POST("/api/auth/logout", authenticate, authCtrl.Logout)
	r.GET("/api/partner-center/me", authenticate, authCtrl.Me)
	r.PUT("/api/partner-center/profile", authenticate, authMW.RequireRole("partner"), partnerCtrl.UpdateProfile)
	r.GET("/api/partner-center/dashboard-data", authenticate, dashboardCtrl.GetDashboardData)

	r.GET("/api/admin/partners", authenticate, adminOnly, partnerCtrl.ListPartners)
	r.POST("/api/admin/partners", authenticate, adminOnly, partnerCtrl.PartnerAction)
	r.PUT("/api/admin/partners", authenticate, adminOnly, partnerCtrl.UpdatePartner)
	r.DELETE("/api/admin/partners", authenticate, adminOnly, partnerCtrl.DeletePartner)
	r.GET("/api/admin/applications/export", authenticate, adminOnly, appCtrl.Export)
	r.GET("/api/admin/init-sheets", authenticate, adminOnly, systemCtrl.InitSheetsStatus)
	r.POST("/api/admin/init-sheets", authenticate, adminOnly, systemCtrl.InitSheets)
	r.POST("/api/admin/sheets/sync", authenticate, adminOnly, systemCtrl.SyncSheets)

	r.POST("/api/applications", appCtrl.CreateApplication)
	r.GET("/api/applications", authenticate, appCtrl.ListApplications)
	r.PATCH("/api/applications/:id/status", authenticate, appCtrl.UpdateStatus)
	r.PATCH("/api/applications/:id/assignee", authenticate, adminOnly, appCtrl.UpdateAssignee)
	r.GET("/api/applications/:id/history", authenticate, appCtrl.History)

	r.GET("/api/partners/search", partnerCtrl.SearchPartners)
	r.GET("/api/partners/:partnerId", partnerCtrl.GetPublicPartner)
	r.POST("/api/partner/apply", partnerCtrl.Apply)

	ts.router = r
	return ts
}

// addPartner 비밀번호는 testPassword, 전용 URL 은 url-<id>, 아이디는 login-<id>
func (ts *testServer) addPartner(t *testing.T, id, company, parent string, status model.PartnerStatus) *model.Partner {
	p := &model.Partner{
		PartnerID:       id,
		CompanyName:     company,
		CeoName:         "대표" + id,
		CustomURL:       "url-" + id,
		LoginID:         "login-" + id,
		PasswordHash:    testPasswordHash(t),
		Status:          status,
		ParentPartnerID: parent,
		BrandColor:      model.DefaultBrandColor,
	}
	require.NoError(t, ts.partnerRepo.Create(p))
	return p
}

func (ts *testServer) addApplication(t *testing.T, partnerID, customer string) *model.Application {
	app, err := ts.applications.Create(service.CreateApplicationInput{
		PartnerID:   partnerID,
		ProductType: string(model.ProductHappy450),
		Name:        customer,
		Phone:       "01012345678",
	})
	require.NoError(t, err)
	return app
}

func tokenFor(t *testing.T, subject, name, role string) string {
	tokens, err := util.GenerateTokenPair(util.Identity{
		Subject: subject,
		Name:    name,
		Role:    role,
	}, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func adminToken(t *testing.T) string {
	return tokenFor(t, "ADMIN-001", "슈퍼관리자", "admin")
}

func partnerToken(t *testing.T, p *model.Partner) string {
	return tokenFor(t, p.PartnerID, p.CompanyName, "partner")
}

func (ts *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// assertError 표준 에러 응답 확인
func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) map[string]interface{} {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	body := decode(t, w)
	require.Equal(t, false, body["success"])
	require.Equal(t, code, body["error"])
	return body
}
