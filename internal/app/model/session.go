package model

// SessionRole 토큰의 role 클레임
type SessionRole string

const (
	RolePartner SessionRole = "partner"
	RoleAdmin   SessionRole = "admin"
)

// Session 파트너센터 로그인 응답의 partner 객체.
// 관리자가 로그인하면 PartnerID 에 adminId, CustomURL 에 "admin" 이 들어간다
type Session struct {
	PartnerID string      `json:"partnerId"`
	Name      string      `json:"name"`
	CustomURL string      `json:"customUrl"`
	PointInfo string      `json:"pointInfo,omitempty"`
	Level     SessionRole `json:"level"`
	LoginID   string      `json:"loginId,omitempty"`
	AdminRole AdminRole   `json:"adminRole,omitempty"`
}

func (s *Session) IsAdmin() bool {
	return s.Level == RoleAdmin
}

// AdminCredentialResult 관리자 인증 결과
type AdminCredentialResult struct {
	Valid     bool      `json:"valid"`
	Role      AdminRole `json:"role,omitempty"`
	AdminID   string    `json:"adminId,omitempty"`
	AdminName string    `json:"adminName,omitempty"`
}
