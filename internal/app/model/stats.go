package model

// DashboardStats 관리자 대시보드 상단 숫자
type DashboardStats struct {
	TotalPartners             int64 `json:"totalPartners"`
	TodayApplications         int64 `json:"todayApplications"`
	InProgressContracts       int64 `json:"inProgressContracts"`
	MonthlyCompletedContracts int64 `json:"monthlyCompletedContracts"`
}

// PartnerStats 파트너 대시보드 숫자 (본인 + 하위 파트너 범위)
type PartnerStats struct {
	TodayApplications int64 `json:"todayApplications"`
	MonthlyContracts  int64 `json:"monthlyContracts"`
	TotalApplications int64 `json:"totalApplications"`
}
