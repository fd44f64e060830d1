package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/pkg/catalog"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound        = errors.New("partner request not found")
	ErrRequestAlreadyReviewed = errors.New("partner request already reviewed")
)

const (
	relayTimeout      = 10 * time.Second
	requestIDAttempts = 5
)

// PartnerApplyInput 파트너 입점 신청 폼
type PartnerApplyInput struct {
	CompanyName          string `json:"companyName" binding:"required"`
	BusinessNumber       string `json:"businessNumber" binding:"required,bizno"`
	CeoName              string `json:"ceoName" binding:"required"`
	CompanyAddress       string `json:"companyAddress"`
	CompanyPhone         string `json:"companyPhone"`
	ManagerName          string `json:"managerName" binding:"required"`
	ManagerDepartment    string `json:"managerDepartment"`
	ManagerPhone         string `json:"managerPhone" binding:"required,krphone"`
	ManagerEmail         string `json:"managerEmail" binding:"required,email"`
	ShopType             string `json:"shopType" binding:"required"`
	ShopURL              string `json:"shopUrl"`
	MonthlyVisitors      string `json:"monthlyVisitors"`
	MemberCount          string `json:"memberCount"`
	MainProducts         string `json:"mainProducts"`
	ExpectedMonthlySales string `json:"expectedMonthlySales"`
	PointRate            string `json:"pointRate"`
	AdditionalRequest    string `json:"additionalRequest"`
	ParentPartnerID      string `json:"parentPartnerId"`
	ParentPartnerName    string `json:"parentPartnerName"`
}

// ApplicationRelay 검증을 마친 신청을 외부 스크립트로 넘긴다 (*catalog.Client)
type ApplicationRelay interface {
	RelayPartnerApplication(ctx context.Context, app catalog.PartnerApplication) error
}

type PartnerRequestService interface {
	Apply(input PartnerApplyInput) (*model.PartnerRequest, error)
	Approve(requestID, reviewedBy string, settings PartnerInput) (*model.Partner, error)
	Reject(requestID, reviewedBy string) error
	ListPending() ([]model.PartnerRequest, error)
	GetRequest(requestID string) (*model.PartnerRequest, error)
}

type partnerRequestService struct {
	requestRepo repository.PartnerRequestRepository
	partnerRepo repository.PartnerRepository
	relay       ApplicationRelay
	events      EventPublisher
	sync        SyncTrigger
	now         func() time.Time
}

// NewPartnerRequestService relay 가 nil 이면 외부 전달을 하지 않는다
func NewPartnerRequestService(
	requestRepo repository.PartnerRequestRepository,
	partnerRepo repository.PartnerRepository,
	relay ApplicationRelay,
	events EventPublisher,
	sync SyncTrigger,
) PartnerRequestService {
	return &partnerRequestService{
		requestRepo: requestRepo,
		partnerRepo: partnerRepo,
		relay:       relay,
		events:      publisherOrNoop(events),
		sync:        triggerOrNoop(sync),
		now:         time.Now,
	}
}

func (s *partnerRequestService) Apply(input PartnerApplyInput) (*model.PartnerRequest, error) {
	now := s.now()
	req := &model.PartnerRequest{
		RequestID:            util.NewPartnerRequestID(now),
		CompanyName:          strings.TrimSpace(input.CompanyName),
		BusinessNumber:       util.FormatBusinessNumber(input.BusinessNumber),
		CeoName:              strings.TrimSpace(input.CeoName),
		CompanyAddress:       input.CompanyAddress,
		CompanyPhone:         util.FormatPhone(input.CompanyPhone),
		ManagerName:          strings.TrimSpace(input.ManagerName),
		ManagerDepartment:    input.ManagerDepartment,
		ManagerPhone:         util.FormatPhone(input.ManagerPhone),
		ManagerEmail:         strings.TrimSpace(input.ManagerEmail),
		ShopType:             input.ShopType,
		ShopURL:              input.ShopURL,
		MonthlyVisitors:      input.MonthlyVisitors,
		MemberCount:          input.MemberCount,
		MainProducts:         input.MainProducts,
		ExpectedMonthlySales: input.ExpectedMonthlySales,
		PointRate:            input.PointRate,
		AdditionalRequest:    input.AdditionalRequest,
		ParentPartnerID:      strings.TrimSpace(input.ParentPartnerID),
		ParentPartnerName:    input.ParentPartnerName,
		Status:               model.RequestStatusPending,
	}

	logger.Info("Partner request received", map[string]interface{}{
		"request_id":   req.RequestID,
		"company_name": req.CompanyName,
		"parent_id":    req.ParentPartnerID,
	})

	// 같은 밀리초에 들어온 신청은 다음 밀리초 번호를 쓴다
	for attempt := 1; ; attempt++ {
		err := s.requestRepo.Create(req)
		if err == nil {
			break
		}
		if !apperrors.IsDuplicateKey(err) || attempt >= requestIDAttempts {
			return nil, err
		}
		req.ID = 0
		req.RequestID = util.NewPartnerRequestID(now.Add(time.Duration(attempt) * time.Millisecond))
	}

	s.events.Publish(Event{
		Type:    EventPartnerRequest,
		Payload: req,
		At:      now,
	})
	s.sync.Trigger()

	if s.relay != nil {
		go s.relayRequest(req, now)
	}
	return req, nil
}

// relayRequest 실패해도 신청은 이미 저장됐으므로 로그만 남긴다
func (s *partnerRequestService) relayRequest(req *model.PartnerRequest, submittedAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	err := s.relay.RelayPartnerApplication(ctx, catalog.PartnerApplication{
		RequestID:    req.RequestID,
		CompanyName:  req.CompanyName,
		BusinessNo:   req.BusinessNumber,
		CeoName:      req.CeoName,
		ManagerName:  req.ManagerName,
		ManagerPhone: req.ManagerPhone,
		ManagerEmail: req.ManagerEmail,
		ShopType:     req.ShopType,
		ShopURL:      req.ShopURL,
		SubmittedAt:  submittedAt.Format(time.RFC3339),
	})
	if err != nil {
		logger.Warn("Failed to relay partner request", map[string]interface{}{
			"request_id": req.RequestID,
			"error":      err.Error(),
		})
	}
}

// Approve 신청서 내용 + 관리자가 정한 URL/아이디/비밀번호로 파트너를 만든다. 한 트랜잭션
func (s *partnerRequestService) Approve(requestID, reviewedBy string, settings PartnerInput) (*model.Partner, error) {
	if !settings.HasSettings() {
		return nil, ErrPartnerSettingsRequired
	}

	req, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return nil, ErrRequestAlreadyReviewed
	}

	input := PartnerInput{
		CompanyName:       req.CompanyName,
		BusinessNumber:    req.BusinessNumber,
		CeoName:           req.CeoName,
		ManagerName:       req.ManagerName,
		ManagerPhone:      req.ManagerPhone,
		ManagerEmail:      req.ManagerEmail,
		ShopURL:           req.ShopURL,
		ShopType:          req.ShopType,
		MemberCount:       req.MemberCount,
		CustomURL:         settings.CustomURL,
		LogoURL:           settings.LogoURL,
		LogoText:          withDefault(settings.LogoText, req.CompanyName),
		LandingTitle:      settings.LandingTitle,
		PointInfo:         settings.PointInfo,
		BrandColor:        settings.BrandColor,
		LoginID:           settings.LoginID,
		LoginPassword:     settings.LoginPassword,
		ParentPartnerID:   withDefault(settings.ParentPartnerID, req.ParentPartnerID),
		ParentPartnerName: withDefault(settings.ParentPartnerName, req.ParentPartnerName),
		ApprovedBy:        reviewedBy,
	}

	now := time.Now()
	partner, err := preparePartner(s.partnerRepo, input, now)
	if err != nil {
		return nil, err
	}

	logger.Info("Approving partner request", map[string]interface{}{
		"request_id":  requestID,
		"partner_id":  partner.PartnerID,
		"reviewed_by": reviewedBy,
	})

	if err := s.requestRepo.Approve(requestID, reviewedBy, now, partner); err != nil {
		return nil, mapReviewError(err)
	}

	s.events.Publish(Event{
		Type:       EventPartnerApproved,
		PartnerIDs: nonEmpty(partner.PartnerID, partner.ParentPartnerID),
		Payload:    partner.Public(),
		At:         now,
	})
	s.sync.Trigger()
	return partner, nil
}

func (s *partnerRequestService) Reject(requestID, reviewedBy string) error {
	logger.Info("Rejecting partner request", map[string]interface{}{
		"request_id":  requestID,
		"reviewed_by": reviewedBy,
	})

	if err := s.requestRepo.Reject(requestID, reviewedBy, time.Now()); err != nil {
		return mapReviewError(err)
	}
	s.sync.Trigger()
	return nil
}

func (s *partnerRequestService) ListPending() ([]model.PartnerRequest, error) {
	return s.requestRepo.FindAll(model.RequestStatusPending)
}

func (s *partnerRequestService) GetRequest(requestID string) (*model.PartnerRequest, error) {
	req, err := s.requestRepo.FindByRequestID(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func mapReviewError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRequestNotFound
	case errors.Is(err, repository.ErrRequestNotPending):
		return ErrRequestAlreadyReviewed
	}
	return mapPartnerWriteError(err)
}

// nonEmpty 빈 값과 관리자 센티널을 뺀 파트너 ID 목록
func nonEmpty(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && id != model.AdminParentID {
			out = append(out, id)
		}
	}
	return out
}
