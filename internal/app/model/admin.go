package model

import "time"

type AdminRole string

const (
	AdminRoleSuper  AdminRole = "super"
	AdminRoleNormal AdminRole = "normal"
)

// Admin 본사 관리자
type Admin struct {
	ID           uint       `gorm:"primarykey" json:"-"`
	AdminID      string     `gorm:"type:varchar(40);uniqueIndex;not null" json:"adminId"` // ADMIN-001
	AdminName    string     `gorm:"type:varchar(50)" json:"adminName"`
	Email        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         AdminRole  `gorm:"type:varchar(20);default:'normal'" json:"role"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
}

func (Admin) TableName() string {
	return "admins"
}
