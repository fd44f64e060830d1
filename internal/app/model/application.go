package model

import "time"

// ProductType 상담 신청 상품
type ProductType string

const (
	ProductHappy450  ProductType = "happy450"
	ProductSmartcare ProductType = "smartcare"
)

func (p ProductType) Valid() bool {
	return p == ProductHappy450 || p == ProductSmartcare
}

const DefaultPlanType = "-"

// Application 랜딩 페이지에서 들어온 고객 상담/구매 신청
type Application struct {
	ID            uint      `gorm:"primarykey" json:"-"`
	ApplicationNo string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"applicationNo"` // SA-yyyymmdd-NNNN
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// 항상 Partner.PartnerID 를 가리킨다 (loginId 아님)
	PartnerID   string      `gorm:"type:varchar(40);index;not null" json:"partnerId"`
	PartnerName string      `gorm:"type:varchar(100)" json:"partnerName"`
	ProductType ProductType `gorm:"type:varchar(20)" json:"productType"`
	PlanType    string      `gorm:"type:varchar(50);default:'-'" json:"planType"`
	Products    string      `gorm:"type:text" json:"products"` // 선택한 가전 등 자유 입력

	// 고객 정보
	CustomerName    string `gorm:"type:varchar(50);not null" json:"customerName"`
	CustomerBirth   string `gorm:"type:varchar(20)" json:"customerBirth"`
	CustomerGender  string `gorm:"type:varchar(10)" json:"customerGender"`
	CustomerPhone   string `gorm:"type:varchar(20);not null;index" json:"customerPhone"`
	CustomerEmail   string `gorm:"type:varchar(100)" json:"customerEmail"`
	CustomerAddress string `gorm:"type:text" json:"customerAddress"`
	CustomerZipcode string `gorm:"type:varchar(10)" json:"customerZipcode"`

	PartnerMemberID      string `gorm:"type:varchar(60)" json:"partnerMemberId"` // 파트너 쇼핑몰 회원 ID
	PreferredContactTime string `gorm:"type:varchar(50)" json:"preferredContactTime"`
	Inquiry              string `gorm:"type:text" json:"inquiry"`

	Status     ApplicationStatus `gorm:"type:varchar(20);default:'접수';index" json:"status"`
	AssignedTo string            `gorm:"type:varchar(60)" json:"assignedTo"`

	// 상태가 해당 단계에 도달할 때 찍힌다
	ContractDate   *time.Time `json:"contractDate,omitempty"`
	DeliveryDate   *time.Time `json:"deliveryDate,omitempty"`
	SettlementDate *time.Time `json:"settlementDate,omitempty"`

	SheetSynced bool  `gorm:"default:false;index" json:"-"`
	SyncVersion int64 `gorm:"default:0;not null" json:"-"` // 시트에 다시 써야 하는 변경마다 1 증가
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationFilter 고객 목록 조회 조건 (대시보드 필터)
type ApplicationFilter struct {
	PartnerIDs []string // 비어 있으면 전체 (관리자)
	Status     ApplicationStatus
	Search     string // 고객명, 연락처, 파트너명
	From       *time.Time
	To         *time.Time // exclusive
	Page       int
	PageSize   int
}
