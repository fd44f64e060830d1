package repository

import (
	"strings"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartnerRepository interface {
	Create(partner *model.Partner) error
	Upsert(partner *model.Partner) error
	Update(partnerID string, fields map[string]interface{}) (bool, error)
	Delete(partnerID string) (bool, error)
	FindByPartnerID(partnerID string) (*model.Partner, error)
	FindByLoginID(loginID string) (*model.Partner, error)
	FindByCustomURL(customURL string) (*model.Partner, error)
	FindAll() ([]model.Partner, error)
	FindByPartnerIDs(partnerIDs []string) ([]model.Partner, error)
	Search(query string, limit int) ([]model.Partner, error)
	ListPartnerIDs() ([]string, error)
	ListChildIDs(parentID string) ([]string, error)
	CountChildren(parentID string) (int64, error)
	CountActive() (int64, error)
	FindUnsynced(limit int) ([]model.Partner, error)
	MarkSynced(partnerID string, version int64) (bool, error)
}

type partnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) Create(partner *model.Partner) error {
	logger.Debug("Creating partner in database", map[string]interface{}{
		"partner_id": partner.PartnerID,
		"login_id":   partner.LoginID,
		"custom_url": partner.CustomURL,
	})

	if err := r.db.Create(partner).Error; err != nil {
		logger.Error("Failed to create partner in database", err, map[string]interface{}{
			"partner_id": partner.PartnerID,
			"login_id":   partner.LoginID,
		})
		return err
	}

	logger.Debug("Partner created in database", map[string]interface{}{
		"partner_id": partner.PartnerID,
	})
	return nil
}

// Upsert partner_id 기준으로 덮어쓴다 (시트 가져오기)
func (r *partnerRepository) Upsert(partner *model.Partner) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "partner_id"}},
		UpdateAll: true,
	}).Create(partner).Error
	if err != nil {
		logger.Error("Failed to upsert partner", err, map[string]interface{}{
			"partner_id": partner.PartnerID,
		})
	}
	return err
}

// Update 주어진 컬럼만 바꾸고 시트 반영 대상으로 돌린다. 파트너가 없으면 false
func (r *partnerRepository) Update(partnerID string, fields map[string]interface{}) (bool, error) {
	logger.Debug("Updating partner in database", map[string]interface{}{
		"partner_id": partnerID,
		"fields":     len(fields),
	})

	result := r.db.Model(&model.Partner{}).Where("partner_id = ?", partnerID).Updates(dirty(fields))
	if result.Error != nil {
		logger.Error("Failed to update partner in database", result.Error, map[string]interface{}{
			"partner_id": partnerID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *partnerRepository) Delete(partnerID string) (bool, error) {
	logger.Debug("Deleting partner from database", map[string]interface{}{
		"partner_id": partnerID,
	})

	result := r.db.Where("partner_id = ?", partnerID).Delete(&model.Partner{})
	if result.Error != nil {
		logger.Error("Failed to delete partner from database", result.Error, map[string]interface{}{
			"partner_id": partnerID,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *partnerRepository) findOne(column, value string) (*model.Partner, error) {
	var partner model.Partner
	if err := r.db.Where(column+" = ?", value).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *partnerRepository) FindByPartnerID(partnerID string) (*model.Partner, error) {
	return r.findOne("partner_id", partnerID)
}

func (r *partnerRepository) FindByLoginID(loginID string) (*model.Partner, error) {
	return r.findOne("login_id", loginID)
}

func (r *partnerRepository) FindByCustomURL(customURL string) (*model.Partner, error) {
	return r.findOne("custom_url", customURL)
}

func (r *partnerRepository) FindAll() ([]model.Partner, error) {
	var partners []model.Partner
	if err := r.db.Order("created_at DESC").Find(&partners).Error; err != nil {
		logger.Error("Failed to find partners", err)
		return nil, err
	}
	return partners, nil
}

func (r *partnerRepository) FindByPartnerIDs(partnerIDs []string) ([]model.Partner, error) {
	if len(partnerIDs) == 0 {
		return []model.Partner{}, nil
	}
	var partners []model.Partner
	if err := r.db.Where("partner_id IN ?", partnerIDs).Order("created_at DESC").Find(&partners).Error; err != nil {
		logger.Error("Failed to find partners by ids", err, map[string]interface{}{
			"count": len(partnerIDs),
		})
		return nil, err
	}
	return partners, nil
}

// Search 활성 파트너 중 회사명/대표자명 부분 일치 (대소문자 무시)
func (r *partnerRepository) Search(query string, limit int) ([]model.Partner, error) {
	like := "%" + escapeLike(strings.ToLower(query)) + "%"

	var partners []model.Partner
	err := r.db.
		Where("status = ?", model.PartnerStatusActive).
		Where(`(LOWER(company_name) LIKE ? ESCAPE '\' OR LOWER(ceo_name) LIKE ? ESCAPE '\')`, like, like).
		Order("company_name ASC").
		Limit(limit).
		Find(&partners).Error
	if err != nil {
		logger.Error("Failed to search partners", err, map[string]interface{}{
			"query": query,
		})
		return nil, err
	}
	return partners, nil
}

func (r *partnerRepository) ListPartnerIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&model.Partner{}).Order("created_at ASC").Pluck("partner_id", &ids).Error
	return ids, err
}

func (r *partnerRepository) ListChildIDs(parentID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&model.Partner{}).
		Where("parent_partner_id = ?", parentID).
		Order("created_at ASC").
		Pluck("partner_id", &ids).Error
	return ids, err
}

func (r *partnerRepository) CountChildren(parentID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Partner{}).Where("parent_partner_id = ?", parentID).Count(&count).Error
	return count, err
}

func (r *partnerRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&model.Partner{}).Where("status = ?", model.PartnerStatusActive).Count(&count).Error
	return count, err
}

func (r *partnerRepository) FindUnsynced(limit int) ([]model.Partner, error) {
	var partners []model.Partner
	err := r.db.Where("sheet_synced = ?", false).Order("id ASC").Limit(limit).Find(&partners).Error
	return partners, err
}

func (r *partnerRepository) MarkSynced(partnerID string, version int64) (bool, error) {
	return markSynced(r.db, &model.Partner{}, "partner_id", partnerID, version)
}

// escapeLike LIKE 패턴 문자를 그대로 검색되도록 바꾼다
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
