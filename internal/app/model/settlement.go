package model

import "time"

// Settlement 월별 파트너 정산. 기존 시트에서 가져온 데이터를 조회만 한다
type Settlement struct {
	ID              uint       `gorm:"primarykey" json:"-"`
	SettlementID    string     `gorm:"type:varchar(40);uniqueIndex;not null" json:"settlementId"`
	PartnerID       string     `gorm:"type:varchar(40);index;not null" json:"partnerId"`
	SettlementMonth string     `gorm:"type:varchar(7);index" json:"settlementMonth"` // 2026-01
	ContractCount   int        `json:"contractCount"`
	TotalAmount     int64      `json:"totalAmount"`
	CommissionRate  float64    `json:"commissionRate"`
	Deduction       int64      `json:"deduction"`
	NetAmount       int64      `json:"netAmount"`
	SettlementDate  *time.Time `json:"settlementDate,omitempty"`
	Status          string     `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending, processing, completed
	CreatedAt       time.Time  `json:"createdAt"`
}

func (Settlement) TableName() string {
	return "settlements"
}
