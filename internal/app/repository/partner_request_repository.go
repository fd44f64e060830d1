package repository

import (
	"errors"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrRequestNotPending 이미 승인/거절된 신청
var ErrRequestNotPending = errors.New("partner request is not pending")

type PartnerRequestRepository interface {
	Create(req *model.PartnerRequest) error
	Upsert(req *model.PartnerRequest) error
	FindByRequestID(requestID string) (*model.PartnerRequest, error)
	FindAll(status model.PartnerRequestStatus) ([]model.PartnerRequest, error)
	Approve(requestID, reviewedBy string, at time.Time, partner *model.Partner) error
	Reject(requestID, reviewedBy string, at time.Time) error
	FindUnsynced(limit int) ([]model.PartnerRequest, error)
	MarkSynced(requestID string, version int64) (bool, error)
}

type partnerRequestRepository struct {
	db *gorm.DB
}

func NewPartnerRequestRepository(db *gorm.DB) PartnerRequestRepository {
	return &partnerRequestRepository{db: db}
}

func (r *partnerRequestRepository) Create(req *model.PartnerRequest) error {
	logger.Debug("Creating partner request in database", map[string]interface{}{
		"request_id":   req.RequestID,
		"company_name": req.CompanyName,
	})

	if err := r.db.Create(req).Error; err != nil {
		logger.Error("Failed to create partner request in database", err, map[string]interface{}{
			"request_id": req.RequestID,
		})
		return err
	}
	return nil
}

func (r *partnerRequestRepository) Upsert(req *model.PartnerRequest) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "request_id"}},
		UpdateAll: true,
	}).Create(req).Error
}

func (r *partnerRequestRepository) FindByRequestID(requestID string) (*model.PartnerRequest, error) {
	var req model.PartnerRequest
	if err := r.db.Where("request_id = ?", requestID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindAll status 가 비어 있으면 전체
func (r *partnerRequestRepository) FindAll(status model.PartnerRequestStatus) ([]model.PartnerRequest, error) {
	query := r.db.Model(&model.PartnerRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var reqs []model.PartnerRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		logger.Error("Failed to find partner requests", err, map[string]interface{}{
			"status": status,
		})
		return nil, err
	}
	return reqs, nil
}

// Approve 신청서를 approved 로 바꾸고 파트너를 만든다. 둘 중 하나라도 실패하면 롤백
func (r *partnerRequestRepository) Approve(requestID, reviewedBy string, at time.Time, partner *model.Partner) error {
	logger.Debug("Approving partner request", map[string]interface{}{
		"request_id": requestID,
		"partner_id": partner.PartnerID,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := review(tx, requestID, dirty(map[string]interface{}{
			"status":              model.RequestStatusApproved,
			"reviewed_by":         reviewedBy,
			"reviewed_at":         at,
			"approved_partner_id": partner.PartnerID,
		})); err != nil {
			return err
		}

		if err := tx.Create(partner).Error; err != nil {
			return err
		}

		// 기본값이 채워진 행을 다시 읽는다
		return tx.Where("partner_id = ?", partner.PartnerID).First(partner).Error
	})
}

func (r *partnerRequestRepository) Reject(requestID, reviewedBy string, at time.Time) error {
	logger.Debug("Rejecting partner request", map[string]interface{}{
		"request_id": requestID,
	})

	return review(r.db, requestID, dirty(map[string]interface{}{
		"status":      model.RequestStatusRejected,
		"reviewed_by": reviewedBy,
		"reviewed_at": at,
	}))
}

// review pending 인 신청서만 바꾼다. 없으면 gorm.ErrRecordNotFound
func review(tx *gorm.DB, requestID string, fields map[string]interface{}) error {
	result := tx.Model(&model.PartnerRequest{}).
		Where("request_id = ? AND status = ?", requestID, model.RequestStatusPending).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := tx.Model(&model.PartnerRequest{}).Where("request_id = ?", requestID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrRequestNotPending
}

func (r *partnerRequestRepository) FindUnsynced(limit int) ([]model.PartnerRequest, error) {
	var reqs []model.PartnerRequest
	err := r.db.Where("sheet_synced = ?", false).Order("id ASC").Limit(limit).Find(&reqs).Error
	return reqs, err
}

func (r *partnerRequestRepository) MarkSynced(requestID string, version int64) (bool, error) {
	return markSynced(r.db, &model.PartnerRequest{}, "request_id", requestID, version)
}
