package repository

import (
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminRepository interface {
	FindByLogin(loginID string) (*model.Admin, error)
	FindByAdminID(adminID string) (*model.Admin, error)
	UpdateLastLogin(adminID string, at time.Time) error
	Count() (int64, error)
	Upsert(admin *model.Admin) error
}

type adminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

// FindByLogin 관리자 ID 또는 이메일로 찾는다
func (r *adminRepository) FindByLogin(loginID string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.Where("admin_id = ? OR email = ?", loginID, loginID).First(&admin).Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) FindByAdminID(adminID string) (*model.Admin, error) {
	var admin model.Admin
	if err := r.db.Where("admin_id = ?", adminID).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepository) UpdateLastLogin(adminID string, at time.Time) error {
	err := r.db.Model(&model.Admin{}).Where("admin_id = ?", adminID).Update("last_login", at).Error
	if err != nil {
		logger.Error("Failed to update admin last login", err, map[string]interface{}{
			"admin_id": adminID,
		})
	}
	return err
}

func (r *adminRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Admin{}).Count(&count).Error
	return count, err
}

func (r *adminRepository) Upsert(admin *model.Admin) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admin_id"}},
		UpdateAll: true,
	}).Create(admin).Error
}
