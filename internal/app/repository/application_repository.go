package repository

import (
	"errors"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleStatus 읽은 뒤 다른 요청이 먼저 상태를 바꿈
var ErrStaleStatus = errors.New("application status changed concurrently")

// StatusChange 상태 변경 한 건. Milestones 는 함께 찍을 날짜 컬럼
type StatusChange struct {
	ApplicationNo string
	From          model.ApplicationStatus
	To            model.ApplicationStatus
	Milestones    map[string]interface{}
	History       *model.StatusHistory
	At            time.Time
}

type ApplicationRepository interface {
	Create(app *model.Application) error
	Upsert(app *model.Application) error
	FindByNo(applicationNo string) (*model.Application, error)
	FindAll(filter model.ApplicationFilter) ([]model.Application, int64, error)
	ApplyStatusChange(change StatusChange) error
	UpdateAssignee(applicationNo, assignedTo string) (bool, error)
	ReassignPartner(fromPartnerID, toPartnerID string) (int64, error)
	FindHistory(applicationNo string) ([]model.StatusHistory, error)
	UpsertHistory(history *model.StatusHistory) error

	CountByPartnerID(partnerID string) (int64, error)
	CountCreatedSince(partnerIDs []string, since time.Time) (int64, error)
	CountTotal(partnerIDs []string) (int64, error)
	CountNotInStatuses(statuses []model.ApplicationStatus) (int64, error)
	CountContractedSince(partnerIDs []string, since time.Time) (int64, error)

	FindUnsynced(limit int) ([]model.Application, error)
	MarkSynced(applicationNo string, version int64) (bool, error)
	FindUnsyncedHistory(limit int) ([]model.StatusHistory, error)
	MarkHistorySynced(historyIDs []string) error
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(app *model.Application) error {
	logger.Debug("Creating application in database", map[string]interface{}{
		"application_no": app.ApplicationNo,
		"partner_id":     app.PartnerID,
	})

	if err := r.db.Create(app).Error; err != nil {
		logger.Error("Failed to create application in database", err, map[string]interface{}{
			"application_no": app.ApplicationNo,
			"partner_id":     app.PartnerID,
		})
		return err
	}

	logger.Debug("Application created in database", map[string]interface{}{
		"application_no": app.ApplicationNo,
	})
	return nil
}

func (r *applicationRepository) Upsert(app *model.Application) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_no"}},
		UpdateAll: true,
	}).Create(app).Error
}

func (r *applicationRepository) FindByNo(applicationNo string) (*model.Application, error) {
	var app model.Application
	if err := r.db.Where("application_no = ?", applicationNo).First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// FindAll 최신순. PageSize 가 0 이면 전체
func (r *applicationRepository) FindAll(filter model.ApplicationFilter) ([]model.Application, int64, error) {
	logger.Debug("Finding applications", map[string]interface{}{
		"partner_ids": len(filter.PartnerIDs),
		"status":      filter.Status,
		"search":      filter.Search,
		"page":        filter.Page,
	})

	query := r.db.Model(&model.Application{})
	if len(filter.PartnerIDs) > 0 {
		query = query.Where("partner_id IN ?", filter.PartnerIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		query = query.Where(`(customer_name LIKE ? ESCAPE '\' OR customer_phone LIKE ? ESCAPE '\' OR partner_name LIKE ? ESCAPE '\')`, like, like, like)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", localTime(*filter.From))
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", localTime(*filter.To))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count applications", err)
		return nil, 0, err
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var apps []model.Application
	if err := query.Find(&apps).Error; err != nil {
		logger.Error("Failed to find applications", err)
		return nil, 0, err
	}
	return apps, total, nil
}

// ApplyStatusChange 상태, 마일스톤 날짜, 이력을 한 트랜잭션에 쓴다.
// 현재 상태가 From 이 아니면 ErrStaleStatus
func (r *applicationRepository) ApplyStatusChange(change StatusChange) error {
	logger.Debug("Applying application status change", map[string]interface{}{
		"application_no": change.ApplicationNo,
		"from":           change.From,
		"to":             change.To,
	})

	return r.db.Transaction(func(tx *gorm.DB) error {
		fields := dirty(map[string]interface{}{
			"status":     change.To,
			"updated_at": change.At,
		})
		for k, v := range change.Milestones {
			fields[k] = v
		}

		result := tx.Model(&model.Application{}).
			Where("application_no = ? AND status = ?", change.ApplicationNo, change.From).
			Updates(fields)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if change.History != nil {
			if err := tx.Create(change.History).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *applicationRepository) UpdateAssignee(applicationNo, assignedTo string) (bool, error) {
	result := r.db.Model(&model.Application{}).
		Where("application_no = ?", applicationNo).
		Updates(dirty(map[string]interface{}{
			"assigned_to": assignedTo,
			"updated_at":  time.Now(),
		}))
	if result.Error != nil {
		logger.Error("Failed to update application assignee", result.Error, map[string]interface{}{
			"application_no": applicationNo,
		})
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReassignPartner partner_id 값을 일괄 교체 (로그인 ID 로 저장된 과거 데이터 정리)
func (r *applicationRepository) ReassignPartner(fromPartnerID, toPartnerID string) (int64, error) {
	result := r.db.Model(&model.Application{}).
		Where("partner_id = ?", fromPartnerID).
		Updates(dirty(map[string]interface{}{
			"partner_id": toPartnerID,
		}))
	return result.RowsAffected, result.Error
}

func (r *applicationRepository) FindHistory(applicationNo string) ([]model.StatusHistory, error) {
	var history []model.StatusHistory
	err := r.db.Where("application_no = ?", applicationNo).
		Order("changed_at ASC").Order("id ASC").
		Find(&history).Error
	return history, err
}

func (r *applicationRepository) UpsertHistory(history *model.StatusHistory) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "history_id"}},
		UpdateAll: true,
	}).Create(history).Error
}

func (r *applicationRepository) CountByPartnerID(partnerID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Application{}).Where("partner_id = ?", partnerID).Count(&count).Error
	return count, err
}

func (r *applicationRepository) scoped(partnerIDs []string) *gorm.DB {
	query := r.db.Model(&model.Application{})
	if partnerIDs != nil {
		query = query.Where("partner_id IN ?", partnerIDs)
	}
	return query
}

// CountCreatedSince partnerIDs 가 nil 이면 전체
func (r *applicationRepository) CountCreatedSince(partnerIDs []string, since time.Time) (int64, error) {
	var count int64
	err := r.scoped(partnerIDs).Where("created_at >= ?", localTime(since)).Count(&count).Error
	return count, err
}

func (r *applicationRepository) CountTotal(partnerIDs []string) (int64, error) {
	var count int64
	err := r.scoped(partnerIDs).Count(&count).Error
	return count, err
}

func (r *applicationRepository) CountNotInStatuses(statuses []model.ApplicationStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Application{}).Where("status NOT IN ?", statuses).Count(&count).Error
	return count, err
}

// CountContractedSince 상태가 계약완료이고 계약일이 since 이후
func (r *applicationRepository) CountContractedSince(partnerIDs []string, since time.Time) (int64, error) {
	var count int64
	err := r.scoped(partnerIDs).
		Where("status = ? AND contract_date >= ?", model.StatusContracted, localTime(since)).
		Count(&count).Error
	return count, err
}

func (r *applicationRepository) FindUnsynced(limit int) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.Where("sheet_synced = ?", false).Order("id ASC").Limit(limit).Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) MarkSynced(applicationNo string, version int64) (bool, error) {
	return markSynced(r.db, &model.Application{}, "application_no", applicationNo, version)
}

func (r *applicationRepository) FindUnsyncedHistory(limit int) ([]model.StatusHistory, error) {
	var history []model.StatusHistory
	err := r.db.Where("sheet_synced = ?", false).Order("id ASC").Limit(limit).Find(&history).Error
	return history, err
}

func (r *applicationRepository) MarkHistorySynced(historyIDs []string) error {
	if len(historyIDs) == 0 {
		return nil
	}
	return r.db.Model(&model.StatusHistory{}).
		Where("history_id IN ?", historyIDs).
		UpdateColumn("sheet_synced", true).Error
}

// localTime 저장된 시각과 같은 타임존으로 맞춘다. sqlite 는 시각을 문자열로 비교한다
func localTime(t time.Time) time.Time {
	return t.In(time.Local)
}
