package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrPartnerNotFound         = errors.New("partner not found")
	ErrPartnerInactive         = errors.New("partner is not active")
	ErrLoginIDTaken            = errors.New("login id already taken")
	ErrCustomURLTaken          = errors.New("custom url already taken")
	ErrPartnerHasChildren      = errors.New("partner has sub partners")
	ErrPartnerHasApplications  = errors.New("partner has applications")
	ErrInvalidParent           = errors.New("parent partner does not exist")
	ErrPartnerSettingsRequired = errors.New("customUrl, loginId and loginPassword are required")
	ErrOutOfScope              = errors.New("partner is outside of the caller's scope")
	ErrPartnerIDTaken          = errors.New("partner id already taken")
	ErrMissingRequiredFields   = errors.New("required fields are missing")
	ErrPasswordTooLong         = util.ErrPasswordTooLong
)

const (
	searchLimit    = 20
	minSearchRunes = 2

	// GetSubPartnerIDs 에 관리자 센티널을 넘기면 붙는 의사 ID
	scopeAdmin  = "admin"
	scopeDirect = "direct"
)

// PartnerInput 관리자 직접 등록 / 신청 승인 시 파트너 설정
type PartnerInput struct {
	PartnerID         string `json:"partnerId"`
	CompanyName       string `json:"companyName"`
	BusinessNumber    string `json:"businessNumber" binding:"omitempty,bizno"`
	CeoName           string `json:"ceoName"`
	ManagerName       string `json:"managerName"`
	ManagerPhone      string `json:"managerPhone" binding:"omitempty,krphone"`
	ManagerEmail      string `json:"managerEmail" binding:"omitempty,email"`
	ShopURL           string `json:"shopUrl"`
	ShopType          string `json:"shopType"`
	MemberCount       string `json:"memberCount"`
	CustomURL         string `json:"customUrl" binding:"omitempty,slug"`
	LogoURL           string `json:"logoUrl"`
	LogoText          string `json:"logoText"`
	LandingTitle      string `json:"landingTitle"`
	PointInfo         string `json:"pointInfo"`
	BrandColor        string `json:"brandColor" binding:"omitempty,hexcolor"`
	LoginID           string `json:"loginId"`
	LoginPassword     string `json:"loginPassword" binding:"omitempty,max=72"`
	ParentPartnerID   string `json:"parentPartnerId"`
	ParentPartnerName string `json:"parentPartnerName"`
	ApprovedBy        string `json:"approvedBy"`
}

// HasSettings 전용 URL, 아이디, 비밀번호가 모두 있는지
func (in *PartnerInput) HasSettings() bool {
	return strings.TrimSpace(in.CustomURL) != "" &&
		strings.TrimSpace(in.LoginID) != "" &&
		in.LoginPassword != ""
}

// PartnerPatch 관리자 수정. nil 인 필드는 건드리지 않는다
type PartnerPatch struct {
	CompanyName       *string              `json:"companyName"`
	BusinessNumber    *string              `json:"businessNumber" binding:"omitempty,bizno"`
	CeoName           *string              `json:"ceoName"`
	ManagerName       *string              `json:"managerName"`
	ManagerPhone      *string              `json:"managerPhone" binding:"omitempty,krphone"`
	ManagerEmail      *string              `json:"managerEmail" binding:"omitempty,email"`
	ShopURL           *string              `json:"shopUrl"`
	ShopType          *string              `json:"shopType"`
	MemberCount       *string              `json:"memberCount"`
	CustomURL         *string              `json:"customUrl" binding:"omitempty,slug"`
	LogoURL           *string              `json:"logoUrl"`
	LogoText          *string              `json:"logoText"`
	LandingTitle      *string              `json:"landingTitle"`
	PointInfo         *string              `json:"pointInfo"`
	BrandColor        *string              `json:"brandColor" binding:"omitempty,hexcolor"`
	LoginID           *string              `json:"loginId"`
	LoginPassword     *string              `json:"loginPassword" binding:"omitempty,max=72"`
	Status            *model.PartnerStatus `json:"status" binding:"omitempty,oneof=active inactive pending"`
	ParentPartnerID   *string              `json:"parentPartnerId"`
	ParentPartnerName *string              `json:"parentPartnerName"`
}

// ProfilePatch 파트너가 직접 고칠 수 있는 랜딩 페이지/담당자 정보
type ProfilePatch struct {
	LogoURL      *string `json:"logoUrl"`
	LogoText     *string `json:"logoText"`
	LandingTitle *string `json:"landingTitle"`
	PointInfo    *string `json:"pointInfo"`
	BrandColor   *string `json:"brandColor" binding:"omitempty,hexcolor"`
	ManagerName  *string `json:"managerName"`
	ManagerPhone *string `json:"managerPhone" binding:"omitempty,krphone"`
	ManagerEmail *string `json:"managerEmail" binding:"omitempty,email"`
}

// Scope 호출자가 볼 수 있는 파트너 범위
type Scope struct {
	All        bool
	PartnerIDs []string
}

func (s Scope) Contains(partnerID string) bool {
	if s.All {
		return true
	}
	for _, id := range s.PartnerIDs {
		if id == partnerID {
			return true
		}
	}
	return false
}

// Filter 리포지토리 조회 조건 (전체면 nil)
func (s Scope) Filter() []string {
	if s.All {
		return nil
	}
	return s.PartnerIDs
}

type PartnerService interface {
	ListPartners() ([]model.Partner, error)
	GetPartner(partnerID string) (*model.Partner, error)
	GetPublicPartner(customURL string) (*model.PublicPartner, error)
	ResolveActivePartner(ref string) (*model.Partner, error)
	RegisterPartner(input PartnerInput) (*model.Partner, error)
	UpdatePartner(partnerID string, patch PartnerPatch) (bool, error)
	UpdateProfile(partnerID string, patch ProfilePatch) (*model.Partner, error)
	DeletePartner(partnerID string) (bool, error)
	SearchPartners(query string) ([]model.PartnerSearchResult, error)
	GetSubPartnerIDs(parentID string) ([]string, error)
	ScopeFor(session *model.Session) (Scope, error)
	ScopeOf(partnerID string) (Scope, error)
	PartnersInScope(scope Scope) ([]model.Partner, error)
}

type partnerService struct {
	partnerRepo     repository.PartnerRepository
	applicationRepo repository.ApplicationRepository
	sync            SyncTrigger
}

func NewPartnerService(
	partnerRepo repository.PartnerRepository,
	applicationRepo repository.ApplicationRepository,
	sync SyncTrigger,
) PartnerService {
	return &partnerService{
		partnerRepo:     partnerRepo,
		applicationRepo: applicationRepo,
		sync:            triggerOrNoop(sync),
	}
}

func (s *partnerService) ListPartners() ([]model.Partner, error) {
	return s.partnerRepo.FindAll()
}

func (s *partnerService) GetPartner(partnerID string) (*model.Partner, error) {
	partner, err := s.partnerRepo.FindByPartnerID(partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	return partner, nil
}

// GetPublicPartner 랜딩 페이지용. 비활성 파트너는 없는 것으로 본다
func (s *partnerService) GetPublicPartner(customURL string) (*model.PublicPartner, error) {
	partner, err := s.partnerRepo.FindByCustomURL(customURL)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	if !partner.IsActive() {
		return nil, ErrPartnerNotFound
	}
	public := partner.Public()
	return &public, nil
}

// ResolveActivePartner 고객 신청의 partnerId 를 파트너로 해석한다.
// partnerId 로 먼저 찾고 없으면 전용 URL 로 찾는다 (랜딩 페이지는 URL 을 보낸다)
func (s *partnerService) ResolveActivePartner(ref string) (*model.Partner, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrPartnerNotFound
	}

	partner, err := s.partnerRepo.FindByPartnerID(ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		partner, err = s.partnerRepo.FindByCustomURL(ref)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}
	if !partner.IsActive() {
		return nil, ErrPartnerInactive
	}
	return partner, nil
}

// RegisterPartner 관리자 직접 등록. 바로 active 상태가 된다
func (s *partnerService) RegisterPartner(input PartnerInput) (*model.Partner, error) {
	if strings.TrimSpace(input.CompanyName) == "" || !input.HasSettings() {
		return nil, ErrMissingRequiredFields
	}

	partner, err := preparePartner(s.partnerRepo, input, time.Now())
	if err != nil {
		return nil, err
	}

	logger.Info("Registering partner", map[string]interface{}{
		"partner_id": partner.PartnerID,
		"custom_url": partner.CustomURL,
		"parent_id":  partner.ParentPartnerID,
	})

	if err := s.partnerRepo.Create(partner); err != nil {
		return nil, mapPartnerWriteError(err)
	}

	created, err := s.partnerRepo.FindByPartnerID(partner.PartnerID)
	if err != nil {
		return nil, err
	}
	s.sync.Trigger()
	return created, nil
}

// preparePartner 입력값에 기본값을 채우고 비밀번호를 해시한다
func preparePartner(partnerRepo repository.PartnerRepository, input PartnerInput, now time.Time) (*model.Partner, error) {
	parentID, parentName, err := resolveParent(partnerRepo, input.ParentPartnerID, input.ParentPartnerName)
	if err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(input.LoginPassword)
	if err != nil {
		return nil, err
	}

	partnerID := strings.TrimSpace(input.PartnerID)
	if partnerID == "" {
		partnerID = util.NewPartnerID(now)
	}

	approvedBy := input.ApprovedBy
	if approvedBy == "" {
		approvedBy = model.AdminParentID
	}

	return &model.Partner{
		PartnerID:         partnerID,
		CompanyName:       strings.TrimSpace(input.CompanyName),
		BusinessNumber:    util.FormatBusinessNumber(input.BusinessNumber),
		CeoName:           input.CeoName,
		ManagerName:       input.ManagerName,
		ManagerPhone:      util.FormatPhone(input.ManagerPhone),
		ManagerEmail:      input.ManagerEmail,
		ShopURL:           input.ShopURL,
		ShopType:          withDefault(input.ShopType, model.DefaultShopType),
		MemberCount:       input.MemberCount,
		CustomURL:         strings.TrimSpace(input.CustomURL),
		LogoURL:           input.LogoURL,
		LogoText:          input.LogoText,
		LandingTitle:      input.LandingTitle,
		PointInfo:         input.PointInfo,
		BrandColor:        withDefault(input.BrandColor, model.DefaultBrandColor),
		LoginID:           strings.TrimSpace(input.LoginID),
		PasswordHash:      hash,
		Status:            model.PartnerStatusActive,
		ParentPartnerID:   parentID,
		ParentPartnerName: parentName,
		ApprovedAt:        &now,
		ApprovedBy:        approvedBy,
	}, nil
}

// resolveParent 상위 파트너가 지정되면 존재를 확인하고 이름을 채운다
func resolveParent(partnerRepo repository.PartnerRepository, parentID, parentName string) (string, string, error) {
	parentID = strings.TrimSpace(parentID)
	if parentID == "" || parentID == model.AdminParentID {
		return parentID, parentName, nil
	}

	parent, err := partnerRepo.FindByPartnerID(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrInvalidParent
		}
		return "", "", err
	}
	if parentName == "" {
		parentName = parent.CompanyName
	}
	return parent.PartnerID, parentName, nil
}

func (s *partnerService) UpdatePartner(partnerID string, patch PartnerPatch) (bool, error) {
	fields := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	set("company_name", patch.CompanyName)
	set("ceo_name", patch.CeoName)
	set("manager_name", patch.ManagerName)
	set("manager_email", patch.ManagerEmail)
	set("shop_url", patch.ShopURL)
	set("shop_type", patch.ShopType)
	set("member_count", patch.MemberCount)
	set("custom_url", patch.CustomURL)
	set("logo_url", patch.LogoURL)
	set("logo_text", patch.LogoText)
	set("landing_title", patch.LandingTitle)
	set("point_info", patch.PointInfo)
	set("brand_color", patch.BrandColor)
	set("login_id", patch.LoginID)
	set("parent_partner_name", patch.ParentPartnerName)

	if patch.BusinessNumber != nil {
		fields["business_number"] = util.FormatBusinessNumber(*patch.BusinessNumber)
	}
	if patch.ManagerPhone != nil {
		fields["manager_phone"] = util.FormatPhone(*patch.ManagerPhone)
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.LoginPassword != nil && *patch.LoginPassword != "" {
		hash, err := util.HashPassword(*patch.LoginPassword)
		if err != nil {
			return false, err
		}
		fields["password_hash"] = hash
	}
	if patch.ParentPartnerID != nil {
		if *patch.ParentPartnerID == partnerID {
			return false, ErrInvalidParent
		}
		name := ""
		if patch.ParentPartnerName != nil {
			name = *patch.ParentPartnerName
		}
		parentID, parentName, err := resolveParent(s.partnerRepo, *patch.ParentPartnerID, name)
		if err != nil {
			return false, err
		}
		fields["parent_partner_id"] = parentID
		fields["parent_partner_name"] = parentName
	}

	if len(fields) == 0 {
		// 바꿀 것이 없어도 존재 여부는 알려준다
		_, err := s.GetPartner(partnerID)
		if errors.Is(err, ErrPartnerNotFound) {
			return false, nil
		}
		return err == nil, err
	}
	logger.Info("Updating partner", map[string]interface{}{
		"partner_id": partnerID,
		"fields":     len(fields),
	})

	ok, err := s.partnerRepo.Update(partnerID, fields)
	if err != nil {
		return false, mapPartnerWriteError(err)
	}
	if ok {
		s.sync.Trigger()
	}
	return ok, nil
}

func (s *partnerService) UpdateProfile(partnerID string, patch ProfilePatch) (*model.Partner, error) {
	ok, err := s.UpdatePartner(partnerID, PartnerPatch{
		LogoURL:      patch.LogoURL,
		LogoText:     patch.LogoText,
		LandingTitle: patch.LandingTitle,
		PointInfo:    patch.PointInfo,
		BrandColor:   patch.BrandColor,
		ManagerName:  patch.ManagerName,
		ManagerPhone: patch.ManagerPhone,
		ManagerEmail: patch.ManagerEmail,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPartnerNotFound
	}
	return s.GetPartner(partnerID)
}

// DeletePartner 하위 파트너나 고객 신청이 남아 있으면 지우지 않는다 (비활성화로 대신한다)
func (s *partnerService) DeletePartner(partnerID string) (bool, error) {
	partner, err := s.partnerRepo.FindByPartnerID(partnerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	children, err := s.partnerRepo.CountChildren(partner.PartnerID)
	if err != nil {
		return false, err
	}
	if children > 0 {
		logger.Warn("Partner delete refused: has sub partners", map[string]interface{}{
			"partner_id": partnerID,
			"children":   children,
		})
		return false, ErrPartnerHasChildren
	}

	apps, err := s.applicationRepo.CountByPartnerID(partner.PartnerID)
	if err != nil {
		return false, err
	}
	if apps > 0 {
		logger.Warn("Partner delete refused: has applications", map[string]interface{}{
			"partner_id":   partnerID,
			"applications": apps,
		})
		return false, ErrPartnerHasApplications
	}

	logger.Info("Deleting partner", map[string]interface{}{
		"partner_id": partnerID,
	})
	ok, err := s.partnerRepo.Delete(partnerID)
	if err != nil || !ok {
		return ok, err
	}
	if l, isListener := s.sync.(PartnerRemovalListener); isListener {
		l.PartnerRemoved(partnerID)
	}
	s.sync.Trigger()
	return true, nil
}

// SearchPartners 상위 파트너 찾기. 2글자 미만은 빈 결과
func (s *partnerService) SearchPartners(query string) ([]model.PartnerSearchResult, error) {
	query = strings.TrimSpace(query)
	results := []model.PartnerSearchResult{}
	if utf8.RuneCountInString(query) < minSearchRunes {
		return results, nil
	}

	partners, err := s.partnerRepo.Search(query, searchLimit)
	if err != nil {
		return nil, err
	}
	for _, p := range partners {
		results = append(results, model.PartnerSearchResult{
			PartnerID:   p.PartnerID,
			CompanyName: p.CompanyName,
			CeoName:     p.CeoName,
		})
	}
	return results, nil
}

// GetSubPartnerIDs [parentID, 직속 하위 파트너...].
// "admin" 이나 "ADMIN" 으로 시작하는 값은 관리자 센티널: 전체 파트너 + "admin" + "direct".
// 센티널은 검증된 관리자 토큰일 때만 넘어온다 (ScopeFor 참조)
func (s *partnerService) GetSubPartnerIDs(parentID string) ([]string, error) {
	if parentID == scopeAdmin || strings.HasPrefix(parentID, "ADMIN") {
		all, err := s.partnerRepo.ListPartnerIDs()
		if err != nil {
			return nil, err
		}
		return append(all, scopeAdmin, scopeDirect), nil
	}

	return s.directIDs(parentID)
}

// directIDs 자신 + 직속 하위. ID 모양과 상관없이 센티널로 보지 않는다
func (s *partnerService) directIDs(partnerID string) ([]string, error) {
	children, err := s.partnerRepo.ListChildIDs(partnerID)
	if err != nil {
		return nil, err
	}
	return append([]string{partnerID}, children...), nil
}

// ScopeFor 토큰의 역할로 범위를 정한다. 파트너 ID 문자열 모양은 보지 않는다
func (s *partnerService) ScopeFor(session *model.Session) (Scope, error) {
	if session.IsAdmin() {
		return Scope{All: true}, nil
	}
	return s.ScopeOf(session.PartnerID)
}

// ScopeOf 한 파트너와 직속 하위 파트너 범위
func (s *partnerService) ScopeOf(partnerID string) (Scope, error) {
	ids, err := s.directIDs(partnerID)
	if err != nil {
		return Scope{}, err
	}
	return Scope{PartnerIDs: ids}, nil
}

func (s *partnerService) PartnersInScope(scope Scope) ([]model.Partner, error) {
	if scope.All {
		return s.partnerRepo.FindAll()
	}
	return s.partnerRepo.FindByPartnerIDs(scope.PartnerIDs)
}

// mapPartnerWriteError unique 위반을 sentinel 로 바꾼다
func mapPartnerWriteError(err error) error {
	switch apperrors.DuplicateColumn(err) {
	case "login_id":
		return ErrLoginIDTaken
	case "custom_url":
		return ErrCustomURLTaken
	case "partner_id":
		return ErrPartnerIDTaken
	}
	return err
}

func withDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
