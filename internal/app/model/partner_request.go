package model

import "time"

// PartnerRequestStatus 파트너 신청 심사 상태
type PartnerRequestStatus string

const (
	RequestStatusPending  PartnerRequestStatus = "pending"  // 검토 대기
	RequestStatusApproved PartnerRequestStatus = "approved" // 승인됨
	RequestStatusRejected PartnerRequestStatus = "rejected" // 거절됨
)

// PartnerRequest 파트너 입점 신청서. 승인되면 Partner 가 만들어지고 신청서는 approved 로 남는다
type PartnerRequest struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	RequestID string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"requestId"` // PR-<ms>
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 회사
	CompanyName    string `gorm:"type:varchar(100);not null" json:"companyName"`
	BusinessNumber string `gorm:"type:varchar(20);not null" json:"businessNumber"`
	CeoName        string `gorm:"type:varchar(50);not null" json:"ceoName"`
	CompanyAddress string `gorm:"type:text" json:"companyAddress"`
	CompanyPhone   string `gorm:"type:varchar(20)" json:"companyPhone"`

	// 담당자
	ManagerName       string `gorm:"type:varchar(50);not null" json:"managerName"`
	ManagerDepartment string `gorm:"type:varchar(50)" json:"managerDepartment"`
	ManagerPhone      string `gorm:"type:varchar(20);not null" json:"managerPhone"`
	ManagerEmail      string `gorm:"type:varchar(100);not null" json:"managerEmail"`

	// 쇼핑몰
	ShopType             string `gorm:"type:varchar(50);not null" json:"shopType"`
	ShopURL              string `gorm:"type:text" json:"shopUrl"`
	MonthlyVisitors      string `gorm:"type:varchar(50)" json:"monthlyVisitors"`
	MemberCount          string `gorm:"type:varchar(50)" json:"memberCount"`
	MainProducts         string `gorm:"type:text" json:"mainProducts"`
	ExpectedMonthlySales string `gorm:"type:varchar(50)" json:"expectedMonthlySales"`
	PointRate            string `gorm:"type:varchar(50)" json:"pointRate"`
	AdditionalRequest    string `gorm:"type:text" json:"additionalRequest"`

	// 추천한 상위 파트너
	ParentPartnerID   string `gorm:"type:varchar(40)" json:"parentPartnerId"`
	ParentPartnerName string `gorm:"type:varchar(100)" json:"parentPartnerName"`

	Status            PartnerRequestStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	ReviewedBy        string               `gorm:"type:varchar(60)" json:"reviewedBy"`
	ReviewedAt        *time.Time           `json:"reviewedAt,omitempty"`
	ApprovedPartnerID string               `gorm:"type:varchar(40)" json:"approvedPartnerId,omitempty"` // 승인으로 만들어진 파트너

	SheetSynced bool  `gorm:"default:false;index" json:"-"`
	SyncVersion int64 `gorm:"default:0;not null" json:"-"`
}

func (PartnerRequest) TableName() string {
	return "partner_requests"
}

func (r *PartnerRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
