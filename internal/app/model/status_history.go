package model

import "time"

// StatusHistory 고객 신청 상태 변경 이력 (추가만 한다)
type StatusHistory struct {
	ID             uint              `gorm:"primarykey" json:"-"`
	HistoryID      string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"historyId"`
	ApplicationNo  string            `gorm:"type:varchar(20);index;not null" json:"applicationNo"`
	PreviousStatus ApplicationStatus `gorm:"type:varchar(20)" json:"previousStatus"`
	NewStatus      ApplicationStatus `gorm:"type:varchar(20)" json:"newStatus"`
	ChangedBy      string            `gorm:"type:varchar(60)" json:"changedBy"`
	ChangedAt      time.Time         `gorm:"index" json:"changedAt"`
	Memo           string            `gorm:"type:text" json:"memo"`

	SheetSynced bool `gorm:"default:false;index" json:"-"`
}

func (StatusHistory) TableName() string {
	return "status_history"
}
