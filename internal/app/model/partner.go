package model

import "time"

// PartnerStatus 파트너 상태
type PartnerStatus string

const (
	PartnerStatusActive   PartnerStatus = "active"   // 활성
	PartnerStatusInactive PartnerStatus = "inactive" // 비활성 (로그인/랜딩 차단)
	PartnerStatusPending  PartnerStatus = "pending"  // 대기
)

const (
	DefaultBrandColor = "#1e3a5f"
	DefaultShopType   = "회원제 쇼핑몰"

	// AdminParentID 관리자가 직접 등록한 파트너의 상위 파트너 값
	AdminParentID = "admin"
)

// Partner 제휴 파트너 (리셀러).
// 계층은 한 단계뿐이다: 상위 파트너는 다른 파트너이거나 비어 있음/"admin".
// 파트너는 자신과 직속 하위 파트너의 고객까지만 본다 (손자 파트너는 보이지 않음)
type Partner struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	PartnerID string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"partnerId"` // P-<ms> 또는 시드 데이터의 고정 ID
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 회사 정보
	CompanyName    string `gorm:"type:varchar(100);not null;index" json:"companyName"`
	BusinessNumber string `gorm:"type:varchar(20)" json:"businessNumber"` // 123-45-67890
	CeoName        string `gorm:"type:varchar(50);index" json:"ceoName"`

	// 담당자
	ManagerName  string `gorm:"type:varchar(50)" json:"managerName"`
	ManagerPhone string `gorm:"type:varchar(20)" json:"managerPhone"`
	ManagerEmail string `gorm:"type:varchar(100)" json:"managerEmail"`

	// 쇼핑몰
	ShopURL     string `gorm:"type:text" json:"shopUrl"`
	ShopType    string `gorm:"type:varchar(50)" json:"shopType"`
	MemberCount string `gorm:"type:varchar(50)" json:"memberCount"` // 자유 입력 ("약 3만명")

	// 랜딩 페이지 커스터마이징
	CustomURL    string `gorm:"type:varchar(60);uniqueIndex;not null" json:"customUrl"` // /p/<customUrl>
	LogoURL      string `gorm:"type:text" json:"logoUrl"`
	LogoText     string `gorm:"type:varchar(100)" json:"logoText"`
	LandingTitle string `gorm:"type:varchar(200)" json:"landingTitle"`
	PointInfo    string `gorm:"type:text" json:"pointInfo"`
	BrandColor   string `gorm:"type:varchar(20);default:'#1e3a5f'" json:"brandColor"`

	// 로그인
	LoginID      string `gorm:"type:varchar(60);uniqueIndex;not null" json:"loginId"`
	PasswordHash string `gorm:"not null" json:"-"`

	Status            PartnerStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`
	ParentPartnerID   string        `gorm:"type:varchar(40);index" json:"parentPartnerId"`
	ParentPartnerName string        `gorm:"type:varchar(100)" json:"parentPartnerName"`
	ApprovedAt        *time.Time    `json:"approvedAt,omitempty"`
	ApprovedBy        string        `gorm:"type:varchar(60)" json:"approvedBy"`

	SheetSynced bool  `gorm:"default:false;index" json:"-"` // 구글 시트 미러 반영 여부
	SyncVersion int64 `gorm:"default:0;not null" json:"-"`  // 시트에 다시 써야 하는 변경마다 1 증가
}

func (Partner) TableName() string {
	return "partners"
}

// IsActive 활성 파트너만 로그인/랜딩/고객 접수가 가능
func (p *Partner) IsActive() bool {
	return p.Status == PartnerStatusActive
}

// PublicPartner 랜딩 페이지용 공개 정보 (인증 정보 제외)
type PublicPartner struct {
	PartnerID    string `json:"partnerId"`
	Name         string `json:"name"`
	CustomURL    string `json:"customUrl"`
	LogoURL      string `json:"logoUrl"`
	LogoText     string `json:"logoText"`
	LandingTitle string `json:"landingTitle"`
	PointInfo    string `json:"pointInfo"`
	BrandColor   string `json:"brandColor"`
}

func (p *Partner) Public() PublicPartner {
	return PublicPartner{
		PartnerID:    p.PartnerID,
		Name:         p.CompanyName,
		CustomURL:    p.CustomURL,
		LogoURL:      p.LogoURL,
		LogoText:     p.LogoText,
		LandingTitle: p.LandingTitle,
		PointInfo:    p.PointInfo,
		BrandColor:   p.BrandColor,
	}
}

// PartnerSearchResult 상위 파트너 찾기 / 관리자 자동완성
type PartnerSearchResult struct {
	PartnerID   string `json:"partnerId"`
	CompanyName string `json:"companyName"`
	CeoName     string `json:"ceoName"`
}
