package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"gorm.io/gorm"
)

const (
	SeedAdminID        = "ADMIN-001"
	SeedAdminEmail     = "admin@sono.com"
	SeedDemoPartnerID  = "P-DEMO-001"
	SeedDemoCustomURL  = "demo"
	SeedDemoLoginID    = "demo"
	seedDemoPointInfo  = "계약 시 최대 30만 포인트 지급"
	seedApprovedBySys  = "system"
	seedSuperAdminName = "슈퍼관리자"
)

// Models AutoMigrate 대상
func Models() []interface{} {
	return []interface{}{
		&model.Admin{},
		&model.Partner{},
		&model.PartnerRequest{},
		&model.Application{},
		&model.StatusHistory{},
		&model.Settlement{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// SeedResult 시드 실행 결과 (이미 있으면 false)
type SeedResult struct {
	AdminCreated       bool `json:"adminCreated"`
	DemoPartnerCreated bool `json:"demoPartnerCreated"`
}

// Seed 기본 관리자와 데모 파트너를 만든다. 여러 번 실행해도 안전하다
func Seed(cfg config.SeedConfig) (SeedResult, error) {
	return SeedInitialData(DB, cfg)
}

// SeedInitialData 주어진 DB 에 시드 데이터를 넣는다
func SeedInitialData(gdb *gorm.DB, cfg config.SeedConfig) (SeedResult, error) {
	logger.Info("Seeding initial data...")

	var result SeedResult

	adminCreated, err := seedAdmin(gdb, cfg.AdminPassword)
	if err != nil {
		logger.Error("Failed to seed admin", err)
		return result, err
	}
	result.AdminCreated = adminCreated

	partnerCreated, err := seedDemoPartner(gdb, cfg.DemoPartnerPassword)
	if err != nil {
		logger.Error("Failed to seed demo partner", err)
		return result, err
	}
	result.DemoPartnerCreated = partnerCreated

	logger.Info("Initial data seeded successfully", map[string]interface{}{
		"admin_created":        result.AdminCreated,
		"demo_partner_created": result.DemoPartnerCreated,
	})
	return result, nil
}

func seedAdmin(gdb *gorm.DB, password string) (bool, error) {
	var count int64
	if err := gdb.Model(&model.Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		logger.Info("Admins already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return false, nil
	}
	if password == "" {
		return false, errors.New("seed admin password is empty")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &model.Admin{
		AdminID:      SeedAdminID,
		AdminName:    seedSuperAdminName,
		Email:        SeedAdminEmail,
		PasswordHash: hash,
		Role:         model.AdminRoleSuper,
	}
	if err := gdb.Create(admin).Error; err != nil {
		return false, err
	}
	return true, nil
}

func seedDemoPartner(gdb *gorm.DB, password string) (bool, error) {
	var count int64
	if err := gdb.Model(&model.Partner{}).
		Where("partner_id = ? OR custom_url = ? OR login_id = ?", SeedDemoPartnerID, SeedDemoCustomURL, SeedDemoLoginID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		logger.Info("Demo partner already exists, skipping...")
		return false, nil
	}
	if password == "" {
		return false, errors.New("seed demo partner password is empty")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash demo partner password: %w", err)
	}

	now := time.Now()
	partner := &model.Partner{
		PartnerID:    SeedDemoPartnerID,
		CompanyName:  "데모 쇼핑몰",
		CeoName:      "홍길동",
		ManagerName:  "김담당",
		ManagerPhone: "010-0000-0000",
		ManagerEmail: "demo@example.com",
		ShopType:     model.DefaultShopType,
		CustomURL:    SeedDemoCustomURL,
		LogoText:     "DEMO",
		LandingTitle: "데모 쇼핑몰 회원 전용 혜택",
		PointInfo:    seedDemoPointInfo,
		BrandColor:   model.DefaultBrandColor,
		LoginID:      SeedDemoLoginID,
		PasswordHash: hash,
		Status:       model.PartnerStatusActive,
		ApprovedAt:   &now,
		ApprovedBy:   seedApprovedBySys,
	}
	if err := gdb.Create(partner).Error; err != nil {
		return false, err
	}
	return true, nil
}
