package repository

import (
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettlementFilter struct {
	PartnerID string
	Month     string // 2026-01
}

type SettlementRepository interface {
	FindAll(filter SettlementFilter) ([]model.Settlement, error)
	Upsert(settlement *model.Settlement) error
}

type settlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) FindAll(filter SettlementFilter) ([]model.Settlement, error) {
	query := r.db.Model(&model.Settlement{})
	if filter.PartnerID != "" {
		query = query.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.Month != "" {
		query = query.Where("settlement_month = ?", filter.Month)
	}
	var settlements []model.Settlement
	err := query.Order("settlement_month DESC").Order("partner_id ASC").Find(&settlements).Error
	return settlements, err
}

func (r *settlementRepository) Upsert(settlement *model.Settlement) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "settlement_id"}},
		UpdateAll: true,
	}).Create(settlement).Error
}
