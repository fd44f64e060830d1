package service

import (
	"errors"
	"strings"
	"time"

	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound     = errors.New("application not found")
	ErrInvalidProduct          = errors.New("invalid product type")
	ErrInvalidStatus           = errors.New("invalid application status")
	ErrInvalidStatusTransition = errors.New("status transition not allowed")
	ErrInvalidPeriod           = errors.New("invalid period")
	ErrApplicationNoExhausted  = errors.New("could not allocate a unique application number")
)

const (
	applicationNoAttempts = 5
	defaultPageSize       = 50
	maxPageSize           = 500
	dateLayout            = "2006-01-02"
)

// CreateApplicationInput 랜딩 페이지 상담 신청 폼
type CreateApplicationInput struct {
	PartnerID            string `json:"partnerId"` // partnerId 또는 전용 URL
	ProductType          string `json:"productType"`
	PlanType             string `json:"planType"`
	Products             string `json:"products"`
	Name                 string `json:"name"`
	Phone                string `json:"phone"`
	Birth                string `json:"birth"`
	Gender               string `json:"gender"`
	Email                string `json:"email" binding:"omitempty,email"`
	Address              string `json:"address"`
	AddressDetail        string `json:"addressDetail"`
	Zipcode              string `json:"zipcode"`
	PartnerMemberID      string `json:"partnerMemberId"`
	PreferredContactTime string `json:"preferredContactTime"`
	Inquiry              string `json:"inquiry"`
}

// ApplicationQuery 대시보드 고객 목록 필터
type ApplicationQuery struct {
	PartnerID string `form:"partnerId"`
	Status    string `form:"status"`
	Q         string `form:"q"`
	Period    string `form:"period" binding:"omitempty,oneof=all month 3months 6months 1year"`
	From      string `form:"from"`
	To        string `form:"to"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" binding:"omitempty,min=1,max=500"`
}

// ApplicationPage 목록 + 전체 건수
type ApplicationPage struct {
	Items    []model.Application `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

type ApplicationService interface {
	Create(input CreateApplicationInput) (*model.Application, error)
	Get(scope Scope, applicationNo string) (*model.Application, error)
	List(scope Scope, query ApplicationQuery) (*ApplicationPage, error)
	UpdateStatus(scope Scope, applicationNo string, status model.ApplicationStatus, changedBy, memo string) (*model.Application, error)
	UpdateAssignee(applicationNo, assignedTo string) (bool, error)
	History(scope Scope, applicationNo string) ([]model.StatusHistory, error)
}

type applicationService struct {
	applicationRepo repository.ApplicationRepository
	partners        PartnerService
	events          EventPublisher
	sync            SyncTrigger
	now             func() time.Time
}

func NewApplicationService(
	applicationRepo repository.ApplicationRepository,
	partners PartnerService,
	events EventPublisher,
	sync SyncTrigger,
) ApplicationService {
	return &applicationService{
		applicationRepo: applicationRepo,
		partners:        partners,
		events:          publisherOrNoop(events),
		sync:            triggerOrNoop(sync),
		now:             time.Now,
	}
}

func (s *applicationService) Create(input CreateApplicationInput) (*model.Application, error) {
	if strings.TrimSpace(input.PartnerID) == "" || input.ProductType == "" ||
		strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Phone) == "" {
		return nil, ErrMissingRequiredFields
	}
	product := model.ProductType(input.ProductType)
	if !product.Valid() {
		return nil, ErrInvalidProduct
	}

	partner, err := s.partners.ResolveActivePartner(input.PartnerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	app := &model.Application{
		PartnerID:            partner.PartnerID,
		PartnerName:          partner.CompanyName,
		ProductType:          product,
		PlanType:             withDefault(input.PlanType, model.DefaultPlanType),
		Products:             input.Products,
		CustomerName:         strings.TrimSpace(input.Name),
		CustomerBirth:        input.Birth,
		CustomerGender:       withDefault(input.Gender, "-"),
		CustomerPhone:        util.FormatPhone(input.Phone),
		CustomerEmail:        strings.TrimSpace(input.Email),
		CustomerAddress:      strings.TrimSpace(input.Address + " " + input.AddressDetail),
		CustomerZipcode:      input.Zipcode,
		PartnerMemberID:      input.PartnerMemberID,
		PreferredContactTime: input.PreferredContactTime,
		Inquiry:              input.Inquiry,
		Status:               model.StatusReceived,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	// 신청번호 4자리 난수가 겹치면 새로 뽑는다
	for attempt := 1; ; attempt++ {
		app.ApplicationNo = util.NewApplicationNo(now)
		err = s.applicationRepo.Create(app)
		if err == nil {
			break
		}
		if !apperrors.IsDuplicateKey(err) {
			return nil, err
		}
		if attempt >= applicationNoAttempts {
			logger.Error("Application number collisions exhausted", err, map[string]interface{}{
				"partner_id": partner.PartnerID,
			})
			return nil, ErrApplicationNoExhausted
		}
		app.ID = 0
	}

	logger.Info("Application created", map[string]interface{}{
		"application_no": app.ApplicationNo,
		"partner_id":     app.PartnerID,
		"product_type":   app.ProductType,
	})

	s.events.Publish(Event{
		Type:       EventNewApplication,
		PartnerIDs: nonEmpty(partner.PartnerID, partner.ParentPartnerID),
		Payload:    app,
		At:         now,
	})
	s.sync.Trigger()
	return app, nil
}

func (s *applicationService) Get(scope Scope, applicationNo string) (*model.Application, error) {
	app, err := s.applicationRepo.FindByNo(applicationNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	if !scope.Contains(app.PartnerID) {
		return nil, ErrOutOfScope
	}
	return app, nil
}

func (s *applicationService) List(scope Scope, query ApplicationQuery) (*ApplicationPage, error) {
	filter := model.ApplicationFilter{
		PartnerIDs: scope.Filter(),
		Search:     strings.TrimSpace(query.Q),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}

	if scope.All && query.PartnerID == model.AdminParentID {
		query.PartnerID = ""
	}
	if query.PartnerID != "" {
		if !scope.Contains(query.PartnerID) {
			return nil, ErrOutOfScope
		}
		filter.PartnerIDs = []string{query.PartnerID}
	}

	if query.Status != "" {
		status := model.ApplicationStatus(query.Status)
		if !status.Valid() && status != model.StatusContractCancelled {
			return nil, ErrInvalidStatus
		}
		filter.Status = status
	}

	from, to, err := periodRange(s.now(), query.Period, query.From, query.To)
	if err != nil {
		return nil, err
	}
	filter.From, filter.To = from, to

	if filter.PageSize == 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	if filter.Page == 0 {
		filter.Page = 1
	}

	items, total, err := s.applicationRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Application{}
	}
	return &ApplicationPage{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// periodRange 프리셋이 있으면 프리셋, 아니면 from/to (to 는 그 날 끝까지 포함)
func periodRange(now time.Time, period, from, to string) (*time.Time, *time.Time, error) {
	now = now.In(util.KST)
	var start time.Time
	switch period {
	case "", "all":
	case "month":
		start = now.AddDate(0, -1, 0)
	case "3months":
		start = now.AddDate(0, -3, 0)
	case "6months":
		start = now.AddDate(0, -6, 0)
	case "1year":
		start = now.AddDate(-1, 0, 0)
	default:
		return nil, nil, ErrInvalidPeriod
	}
	if !start.IsZero() {
		return &start, nil, nil
	}

	var fromPtr, toPtr *time.Time
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, util.KST)
		if err != nil {
			return nil, nil, ErrInvalidPeriod
		}
		fromPtr = &t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, util.KST)
		if err != nil {
			return nil, nil, ErrInvalidPeriod
		}
		t = t.AddDate(0, 0, 1)
		toPtr = &t
	}
	if fromPtr != nil && toPtr != nil && !fromPtr.Before(*toPtr) {
		return nil, nil, ErrInvalidPeriod
	}
	return fromPtr, toPtr, nil
}

// UpdateStatus 전이 규칙 확인, 단계 날짜 기록, 이력 추가를 한 트랜잭션으로 처리한다.
// 같은 상태로 다시 설정해도 이력은 남는다
func (s *applicationService) UpdateStatus(
	scope Scope,
	applicationNo string,
	status model.ApplicationStatus,
	changedBy, memo string,
) (*model.Application, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	app, err := s.Get(scope, applicationNo)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(status) {
		logger.Warn("Rejected application status transition", map[string]interface{}{
			"application_no": applicationNo,
			"from":           app.Status,
			"to":             status,
		})
		return nil, ErrInvalidStatusTransition
	}

	now := s.now()
	history := &model.StatusHistory{
		HistoryID:      util.NewHistoryID(),
		ApplicationNo:  app.ApplicationNo,
		PreviousStatus: app.Status,
		NewStatus:      status,
		ChangedBy:      changedBy,
		ChangedAt:      now,
		Memo:           memo,
	}

	err = s.applicationRepo.ApplyStatusChange(repository.StatusChange{
		ApplicationNo: app.ApplicationNo,
		From:          app.Status,
		To:            status,
		Milestones:    milestones(status, now),
		History:       history,
		At:            now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidStatusTransition
		}
		return nil, err
	}

	logger.Info("Application status changed", map[string]interface{}{
		"application_no": app.ApplicationNo,
		"from":           history.PreviousStatus,
		"to":             status,
		"changed_by":     changedBy,
	})

	updated, err := s.applicationRepo.FindByNo(app.ApplicationNo)
	if err != nil {
		return nil, err
	}

	s.events.Publish(Event{
		Type:       EventStatusChanged,
		PartnerIDs: s.audience(updated.PartnerID),
		Payload:    history,
		At:         now,
	})
	s.sync.Trigger()
	return updated, nil
}

// audience 신청 건 파트너와 그 상위 파트너. 파트너를 못 찾으면 신청 건 파트너만
func (s *applicationService) audience(partnerID string) []string {
	partner, err := s.partners.GetPartner(partnerID)
	if err != nil {
		return nonEmpty(partnerID)
	}
	return nonEmpty(partner.PartnerID, partner.ParentPartnerID)
}

// milestones 해당 단계에 도달하면 날짜를 찍는다
func milestones(status model.ApplicationStatus, at time.Time) map[string]interface{} {
	switch status {
	case model.StatusContracted:
		return map[string]interface{}{"contract_date": at}
	case model.StatusDelivered:
		return map[string]interface{}{"delivery_date": at}
	case model.StatusSettled:
		return map[string]interface{}{"settlement_date": at}
	}
	return nil
}

func (s *applicationService) UpdateAssignee(applicationNo, assignedTo string) (bool, error) {
	ok, err := s.applicationRepo.UpdateAssignee(applicationNo, strings.TrimSpace(assignedTo))
	if err != nil {
		return false, err
	}
	if ok {
		logger.Info("Application assignee updated", map[string]interface{}{
			"application_no": applicationNo,
			"assigned_to":    assignedTo,
		})
		s.sync.Trigger()
	}
	return ok, nil
}

func (s *applicationService) History(scope Scope, applicationNo string) ([]model.StatusHistory, error) {
	if _, err := s.Get(scope, applicationNo); err != nil {
		return nil, err
	}
	history, err := s.applicationRepo.FindHistory(applicationNo)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []model.StatusHistory{}
	}
	return history, nil
}
