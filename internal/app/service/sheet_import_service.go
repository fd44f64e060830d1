package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
)

// ImportResult 탭별 가져온 행 수
type ImportResult struct {
	Admins          int   `json:"admins"`
	Partners        int   `json:"partners"`
	PartnerRequests int   `json:"partnerRequests"`
	Applications    int   `json:"applications"`
	History         int   `json:"history"`
	Settlements     int   `json:"settlements"`
	Skipped         int   `json:"skipped"`
	Reassigned      int64 `json:"reassigned"` // loginId 로 저장돼 있던 신청 건수
}

// RowSource 탭 이름으로 행을 읽는다 (*sheets.Workbook, xlsx 파일)
type RowSource interface {
	GetAllRows(ctx context.Context, tab string) ([]sheets.Row, error)
}

type SheetImportService interface {
	ImportAll(ctx context.Context, source RowSource) (*ImportResult, error)
	ImportTab(tab string, rows []sheets.Row, result *ImportResult) error
}

// sheetImportService 예전 시트 데이터를 DB 로 옮긴다. 여러 번 돌려도 같은 결과 (upsert)
type sheetImportService struct {
	partnerRepo     repository.PartnerRepository
	applicationRepo repository.ApplicationRepository
	requestRepo     repository.PartnerRequestRepository
	adminRepo       repository.AdminRepository
	settlementRepo  repository.SettlementRepository
}

func NewSheetImportService(
	partnerRepo repository.PartnerRepository,
	applicationRepo repository.ApplicationRepository,
	requestRepo repository.PartnerRequestRepository,
	adminRepo repository.AdminRepository,
	settlementRepo repository.SettlementRepository,
) SheetImportService {
	return &sheetImportService{
		partnerRepo:     partnerRepo,
		applicationRepo: applicationRepo,
		requestRepo:     requestRepo,
		adminRepo:       adminRepo,
		settlementRepo:  settlementRepo,
	}
}

// importOrder 파트너가 먼저 들어가야 신청의 partnerId 를 정리할 수 있다
var importOrder = []string{
	sheets.TabAdmins,
	sheets.TabPartners,
	sheets.TabPartnerRequests,
	sheets.TabApplications,
	sheets.TabStatusHistory,
	sheets.TabSettlements,
}

func (s *sheetImportService) ImportAll(ctx context.Context, source RowSource) (*ImportResult, error) {
	result := &ImportResult{}
	for _, tab := range importOrder {
		rows, err := source.GetAllRows(ctx, tab)
		if err != nil {
			return result, fmt.Errorf("failed to read %s: %w", tab, err)
		}
		if err := s.ImportTab(tab, rows, result); err != nil {
			return result, fmt.Errorf("failed to import %s: %w", tab, err)
		}
	}

	reassigned, err := s.fixLoginIDReferences()
	if err != nil {
		return result, err
	}
	result.Reassigned = reassigned

	logger.Info("Legacy sheet import finished", map[string]interface{}{
		"admins":       result.Admins,
		"partners":     result.Partners,
		"applications": result.Applications,
		"history":      result.History,
		"skipped":      result.Skipped,
		"reassigned":   result.Reassigned,
	})
	return result, nil
}

func (s *sheetImportService) ImportTab(tab string, rows []sheets.Row, result *ImportResult) error {
	key := sheets.KeyColumns[tab]
	for _, row := range rows {
		if strings.TrimSpace(row.Get(key)) == "" {
			result.Skipped++
			continue
		}
		rec := sheets.ToCamel(row)

		var err error
		switch tab {
		case sheets.TabAdmins:
			err = s.importAdmin(rec)
			result.Admins++
		case sheets.TabPartners:
			err = s.importPartner(rec)
			result.Partners++
		case sheets.TabPartnerRequests:
			err = s.importRequest(rec)
			result.PartnerRequests++
		case sheets.TabApplications:
			err = s.importApplication(rec)
			result.Applications++
		case sheets.TabStatusHistory:
			err = s.importHistory(rec)
			result.History++
		case sheets.TabSettlements:
			err = s.importSettlement(rec)
			result.Settlements++
		default:
			return fmt.Errorf("%w: %s", sheets.ErrUnknownTab, tab)
		}
		if err != nil {
			return fmt.Errorf("%s=%s: %w", key, row.Get(key), err)
		}
	}
	return nil
}

// hashIfPlain 예전 시트에는 평문 비밀번호가 들어 있다
func hashIfPlain(password string) (string, error) {
	if password == "" || util.IsHashed(password) {
		return password, nil
	}
	return util.HashPassword(password)
}

func (s *sheetImportService) importAdmin(rec sheets.Record) error {
	hash, err := hashIfPlain(rec.Get("password"))
	if err != nil {
		return err
	}
	role := model.AdminRole(rec.Get("role"))
	if role != model.AdminRoleSuper {
		role = model.AdminRoleNormal
	}
	return s.adminRepo.Upsert(&model.Admin{
		AdminID:      rec.Get("adminId"),
		AdminName:    rec.Get("adminName"),
		Email:        rec.Get("email"),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    parseSheetTimeOr(rec.Get("createdAt"), time.Now()),
		LastLogin:    parseSheetTime(rec.Get("lastLogin")),
	})
}

func (s *sheetImportService) importPartner(rec sheets.Record) error {
	hash, err := hashIfPlain(rec.Get("loginPassword"))
	if err != nil {
		return err
	}
	status := model.PartnerStatus(rec.Get("status"))
	switch status {
	case model.PartnerStatusActive, model.PartnerStatusInactive, model.PartnerStatusPending:
	default:
		status = model.PartnerStatusActive
	}

	partnerID := rec.Get("partnerId")
	return s.partnerRepo.Upsert(&model.Partner{
		PartnerID:         partnerID,
		CreatedAt:         parseSheetTimeOr(rec.Get("createdAt"), time.Now()),
		CompanyName:       rec.Get("companyName"),
		BusinessNumber:    rec.Get("businessNumber"),
		CeoName:           rec.Get("ceoName"),
		ManagerName:       rec.Get("managerName"),
		ManagerPhone:      rec.Get("managerPhone"),
		ManagerEmail:      rec.Get("managerEmail"),
		ShopURL:           rec.Get("shopUrl"),
		ShopType:          rec.Get("shopType"),
		MemberCount:       rec.Get("memberCount"),
		CustomURL:         strings.ToLower(withDefault(strings.TrimSpace(rec.Get("customUrl")), partnerID)),
		LogoURL:           rec.Get("logoUrl"),
		LogoText:          rec.Get("logoText"),
		LandingTitle:      rec.Get("landingTitle"),
		PointInfo:         rec.Get("pointInfo"),
		BrandColor:        withDefault(rec.Get("brandColor"), model.DefaultBrandColor),
		LoginID:           withDefault(rec.Get("loginId"), partnerID),
		PasswordHash:      hash,
		Status:            status,
		ParentPartnerID:   rec.Get("parentPartnerId"),
		ParentPartnerName: rec.Get("parentPartnerName"),
		ApprovedAt:        parseSheetTime(rec.Get("approvedAt")),
		ApprovedBy:        rec.Get("approvedBy"),
		SheetSynced:       true,
	})
}

func (s *sheetImportService) importRequest(rec sheets.Record) error {
	status := model.PartnerRequestStatus(rec.Get("status"))
	switch status {
	case model.RequestStatusApproved, model.RequestStatusRejected:
	default:
		status = model.RequestStatusPending
	}
	return s.requestRepo.Upsert(&model.PartnerRequest{
		RequestID:            rec.Get("requestId"),
		CreatedAt:            parseSheetTimeOr(rec.Get("createdAt"), time.Now()),
		CompanyName:          rec.Get("companyName"),
		BusinessNumber:       rec.Get("businessNumber"),
		CeoName:              rec.Get("ceoName"),
		CompanyAddress:       rec.Get("companyAddress"),
		CompanyPhone:         rec.Get("companyPhone"),
		ManagerName:          rec.Get("managerName"),
		ManagerDepartment:    rec.Get("managerDepartment"),
		ManagerPhone:         rec.Get("managerPhone"),
		ManagerEmail:         rec.Get("managerEmail"),
		ShopType:             rec.Get("shopType"),
		ShopURL:              rec.Get("shopUrl"),
		MonthlyVisitors:      rec.Get("monthlyVisitors"),
		MemberCount:          rec.Get("memberCount"),
		MainProducts:         rec.Get("mainProducts"),
		ExpectedMonthlySales: rec.Get("expectedMonthlySales"),
		PointRate:            rec.Get("pointRate"),
		AdditionalRequest:    rec.Get("additionalRequest"),
		ParentPartnerID:      rec.Get("parentPartnerId"),
		ParentPartnerName:    rec.Get("parentPartnerName"),
		Status:               status,
		ReviewedBy:           rec.Get("reviewedBy"),
		ReviewedAt:           parseSheetTime(rec.Get("reviewedAt")),
		SheetSynced:          true,
	})
}

func (s *sheetImportService) importApplication(rec sheets.Record) error {
	status := model.ApplicationStatus(rec.Get("status"))
	if !status.Valid() && status != model.StatusContractCancelled {
		status = model.StatusReceived
	}
	createdAt := parseSheetTimeOr(rec.Get("createdAt"), time.Now())
	return s.applicationRepo.Upsert(&model.Application{
		ApplicationNo:        rec.Get("applicationNo"),
		CreatedAt:            createdAt,
		UpdatedAt:            parseSheetTimeOr(rec.Get("updatedAt"), createdAt),
		PartnerID:            rec.Get("partnerId"),
		PartnerName:          rec.Get("partnerName"),
		ProductType:          model.ProductType(rec.Get("productType")),
		PlanType:             withDefault(rec.Get("planType"), model.DefaultPlanType),
		Products:             rec.Get("products"),
		CustomerName:         rec.Get("customerName"),
		CustomerBirth:        rec.Get("customerBirth"),
		CustomerGender:       rec.Get("customerGender"),
		CustomerPhone:        rec.Get("customerPhone"),
		CustomerEmail:        rec.Get("customerEmail"),
		CustomerAddress:      rec.Get("customerAddress"),
		CustomerZipcode:      rec.Get("customerZipcode"),
		PartnerMemberID:      rec.Get("partnerMemberId"),
		PreferredContactTime: rec.Get("preferredContactTime"),
		Inquiry:              rec.Get("inquiry"),
		Status:               status,
		AssignedTo:           rec.Get("assignedTo"),
		ContractDate:         parseSheetTime(rec.Get("contractDate")),
		DeliveryDate:         parseSheetTime(rec.Get("deliveryDate")),
		SettlementDate:       parseSheetTime(rec.Get("settlementDate")),
		SheetSynced:          true,
	})
}

func (s *sheetImportService) importHistory(rec sheets.Record) error {
	return s.applicationRepo.UpsertHistory(&model.StatusHistory{
		HistoryID:      rec.Get("historyId"),
		ApplicationNo:  rec.Get("applicationNo"),
		PreviousStatus: model.ApplicationStatus(rec.Get("previousStatus")),
		NewStatus:      model.ApplicationStatus(rec.Get("newStatus")),
		ChangedBy:      rec.Get("changedBy"),
		ChangedAt:      parseSheetTimeOr(rec.Get("changedAt"), time.Now()),
		Memo:           rec.Get("memo"),
		SheetSynced:    true,
	})
}

func (s *sheetImportService) importSettlement(rec sheets.Record) error {
	return s.settlementRepo.Upsert(&model.Settlement{
		SettlementID:    rec.Get("settlementId"),
		PartnerID:       rec.Get("partnerId"),
		SettlementMonth: rec.Get("settlementMonth"),
		ContractCount:   int(parseNumber(rec.Get("contractCount"))),
		TotalAmount:     parseNumber(rec.Get("totalAmount")),
		CommissionRate:  parseRate(rec.Get("commissionRate")),
		Deduction:       parseNumber(rec.Get("deduction")),
		NetAmount:       parseNumber(rec.Get("netAmount")),
		SettlementDate:  parseSheetTime(rec.Get("settlementDate")),
		Status:          withDefault(rec.Get("status"), "pending"),
		CreatedAt:       parseSheetTimeOr(rec.Get("createdAt"), time.Now()),
	})
}

// fixLoginIDReferences 예전 신청 데이터는 partnerId 칸에 로그인 아이디가 들어가 있기도 하다
func (s *sheetImportService) fixLoginIDReferences() (int64, error) {
	partners, err := s.partnerRepo.FindAll()
	if err != nil {
		return 0, err
	}
	ids := make(map[string]struct{}, len(partners))
	for _, p := range partners {
		ids[p.PartnerID] = struct{}{}
	}

	var total int64
	for _, p := range partners {
		if p.LoginID == "" || p.LoginID == p.PartnerID {
			continue
		}
		// 다른 파트너의 partnerId 와 같은 로그인 아이디는 바꾸지 않는다
		if _, clash := ids[p.LoginID]; clash {
			continue
		}
		n, err := s.applicationRepo.ReassignPartner(p.LoginID, p.PartnerID)
		if err != nil {
			return total, err
		}
		if n > 0 {
			logger.Info("Rewrote application partner references", map[string]interface{}{
				"login_id":   p.LoginID,
				"partner_id": p.PartnerID,
				"count":      n,
			})
		}
		total += n
	}
	return total, nil
}

var sheetTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006.01.02",
	"2006. 1. 2",
}

// parseSheetTime 시트에 남아 있는 여러 날짜 형식. 읽을 수 없으면 nil
func parseSheetTime(v string) *time.Time {
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "."))
	if v == "" {
		return nil
	}
	for _, layout := range sheetTimeLayouts {
		if t, err := time.ParseInLocation(layout, v, util.KST); err == nil {
			return &t
		}
	}
	return nil
}

func parseSheetTimeOr(v string, fallback time.Time) time.Time {
	if t := parseSheetTime(v); t != nil {
		return *t
	}
	return fallback
}

// parseNumber "1,200,000" 같은 금액
func parseNumber(v string) int64 {
	v = strings.NewReplacer(",", "", "원", "", " ", "").Replace(v)
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return int64(n)
}

// parseRate "10%" 또는 0.1
func parseRate(v string) float64 {
	v = strings.TrimSpace(v)
	percent := strings.HasSuffix(v, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	if err != nil {
		return 0
	}
	if percent {
		return f / 100
	}
	return f
}
