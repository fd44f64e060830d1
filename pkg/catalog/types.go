package catalog

// Product 랜딩 페이지에서 고르는 가전 상품
type Product struct {
	Brand string `json:"brand"`
	Model string `json:"model"`
	Name  string `json:"name"`
	Tag   string `json:"tag"`
	Image string `json:"image"`
}

// PartnerApplication 서버에서 검증을 마친 파트너 신청을 스크립트로 전달할 때의 본문
type PartnerApplication struct {
	Action       string `json:"action"`
	RequestID    string `json:"requestId"`
	CompanyName  string `json:"companyName"`
	BusinessNo   string `json:"businessNumber"`
	CeoName      string `json:"ceoName"`
	ManagerName  string `json:"managerName"`
	ManagerPhone string `json:"managerPhone"`
	ManagerEmail string `json:"managerEmail"`
	ShopType     string `json:"shopType"`
	ShopURL      string `json:"shopUrl,omitempty"`
	SubmittedAt  string `json:"submittedAt"`
}
