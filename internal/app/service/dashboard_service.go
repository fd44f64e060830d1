package service

import (
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
)

// DashboardData 파트너센터 첫 화면에 필요한 것 전부
type DashboardData struct {
	IsAdmin         bool                   `json:"isAdmin"`
	Customers       []model.Application    `json:"customers"`
	Partners        []model.Partner        `json:"partners"`
	PendingRequests []model.PartnerRequest `json:"pendingRequests"`
	Stats           interface{}            `json:"stats"`
}

type DashboardService interface {
	GetStats() (*model.DashboardStats, error)
	GetPartnerStats(partnerIDs []string) (*model.PartnerStats, error)
	GetDashboardData(session *model.Session, partnerID string) (*DashboardData, error)
}

type dashboardService struct {
	partnerRepo     repository.PartnerRepository
	applicationRepo repository.ApplicationRepository
	requestRepo     repository.PartnerRequestRepository
	partners        PartnerService
	now             func() time.Time
}

func NewDashboardService(
	partnerRepo repository.PartnerRepository,
	applicationRepo repository.ApplicationRepository,
	requestRepo repository.PartnerRequestRepository,
	partners PartnerService,
) DashboardService {
	return &dashboardService{
		partnerRepo:     partnerRepo,
		applicationRepo: applicationRepo,
		requestRepo:     requestRepo,
		partners:        partners,
		now:             time.Now,
	}
}

// startOfDay, startOfMonth 한국 시간 기준
func startOfDay(t time.Time) time.Time {
	t = t.In(util.KST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, util.KST)
}

func startOfMonth(t time.Time) time.Time {
	t = t.In(util.KST)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, util.KST)
}

// GetStats 관리자 대시보드. 진행 중 = 종료 상태가 아닌 모든 신청
func (s *dashboardService) GetStats() (*model.DashboardStats, error) {
	now := s.now()

	totalPartners, err := s.partnerRepo.CountActive()
	if err != nil {
		return nil, err
	}
	today, err := s.applicationRepo.CountCreatedSince(nil, startOfDay(now))
	if err != nil {
		return nil, err
	}
	inProgress, err := s.applicationRepo.CountNotInStatuses(model.ClosedStatuses())
	if err != nil {
		return nil, err
	}
	monthly, err := s.applicationRepo.CountContractedSince(nil, startOfMonth(now))
	if err != nil {
		return nil, err
	}

	return &model.DashboardStats{
		TotalPartners:             totalPartners,
		TodayApplications:         today,
		InProgressContracts:       inProgress,
		MonthlyCompletedContracts: monthly,
	}, nil
}

func (s *dashboardService) GetPartnerStats(partnerIDs []string) (*model.PartnerStats, error) {
	now := s.now()
	if partnerIDs == nil {
		partnerIDs = []string{}
	}

	today, err := s.applicationRepo.CountCreatedSince(partnerIDs, startOfDay(now))
	if err != nil {
		return nil, err
	}
	monthly, err := s.applicationRepo.CountContractedSince(partnerIDs, startOfMonth(now))
	if err != nil {
		return nil, err
	}
	total, err := s.applicationRepo.CountTotal(partnerIDs)
	if err != nil {
		return nil, err
	}

	return &model.PartnerStats{
		TodayApplications: today,
		MonthlyContracts:  monthly,
		TotalApplications: total,
	}, nil
}

// GetDashboardData partnerID 는 선택. 파트너는 자기 범위 안의 ID 만 지정할 수 있다
func (s *dashboardService) GetDashboardData(session *model.Session, partnerID string) (*DashboardData, error) {
	scope, err := s.partners.ScopeFor(session)
	if err != nil {
		return nil, err
	}

	// 관리자 화면은 전체 보기를 "admin" 으로 보낸다
	if scope.All && partnerID == model.AdminParentID {
		partnerID = ""
	}

	if partnerID != "" && partnerID != session.PartnerID {
		if !scope.Contains(partnerID) {
			return nil, ErrOutOfScope
		}
		if scope.All {
			scope, err = s.partners.ScopeOf(partnerID)
			if err != nil {
				return nil, err
			}
		} else {
			// 하위 파트너의 하위는 보이지 않는다
			scope = Scope{PartnerIDs: []string{partnerID}}
		}
	}

	customers, _, err := s.applicationRepo.FindAll(model.ApplicationFilter{PartnerIDs: scope.Filter()})
	if err != nil {
		return nil, err
	}
	if customers == nil {
		customers = []model.Application{}
	}

	partners, err := s.partners.PartnersInScope(scope)
	if err != nil {
		return nil, err
	}
	if partners == nil {
		partners = []model.Partner{}
	}

	data := &DashboardData{
		IsAdmin:         session.IsAdmin(),
		Customers:       customers,
		Partners:        partners,
		PendingRequests: []model.PartnerRequest{},
	}

	if scope.All {
		pending, err := s.requestRepo.FindAll(model.RequestStatusPending)
		if err != nil {
			return nil, err
		}
		if pending != nil {
			data.PendingRequests = pending
		}
		stats, err := s.GetStats()
		if err != nil {
			return nil, err
		}
		data.Stats = stats
		return data, nil
	}

	stats, err := s.GetPartnerStats(scope.PartnerIDs)
	if err != nil {
		return nil, err
	}
	data.Stats = stats
	return data, nil
}
