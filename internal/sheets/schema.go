package sheets

// 탭 이름
const (
	TabPartners        = "partners"
	TabApplications    = "applications"
	TabStatusHistory   = "status_history"
	TabSettlements     = "settlements"
	TabAdmins          = "admins"
	TabPartnerRequests = "partner_requests"
)

// Tabs 생성 순서
var Tabs = []string{
	TabPartners,
	TabApplications,
	TabStatusHistory,
	TabSettlements,
	TabAdmins,
	TabPartnerRequests,
}

// Headers 탭별 고정 헤더. 컬럼은 뒤에만 추가한다
var Headers = map[string][]string{
	TabPartners: {
		"partner_id", "company_name", "business_number", "ceo_name",
		"manager_name", "manager_phone", "manager_email",
		"shop_url", "shop_type", "member_count",
		"custom_url", "logo_url", "logo_text", "landing_title", "point_info", "brand_color",
		"login_id", "login_password", "status",
		"parent_partner_id", "parent_partner_name",
		"created_at", "approved_at", "approved_by",
	},
	TabApplications: {
		"application_no", "partner_id", "partner_name", "product_type", "plan_type", "products",
		"customer_name", "customer_birth", "customer_gender", "customer_phone", "customer_email",
		"customer_address", "customer_zipcode", "partner_member_id", "preferred_contact_time", "inquiry",
		"status", "assigned_to", "created_at", "updated_at",
		"contract_date", "delivery_date", "settlement_date",
	},
	TabStatusHistory: {
		"history_id", "application_no", "previous_status", "new_status", "changed_by", "changed_at", "memo",
	},
	TabSettlements: {
		"settlement_id", "partner_id", "settlement_month", "contract_count", "total_amount",
		"commission_rate", "deduction", "net_amount", "settlement_date", "status", "created_at",
	},
	TabAdmins: {
		"admin_id", "admin_name", "email", "password", "role", "created_at", "last_login",
	},
	TabPartnerRequests: {
		"request_id", "company_name", "business_number", "ceo_name", "company_address", "company_phone",
		"manager_name", "manager_department", "manager_phone", "manager_email",
		"shop_type", "shop_url", "monthly_visitors", "member_count", "main_products",
		"expected_monthly_sales", "point_rate", "additional_request",
		"parent_partner_id", "parent_partner_name", "status", "created_at", "reviewed_by", "reviewed_at",
	},
}

// KeyColumns 미러할 때 행을 찾는 컬럼
var KeyColumns = map[string]string{
	TabPartners:        "partner_id",
	TabApplications:    "application_no",
	TabStatusHistory:   "history_id",
	TabSettlements:     "settlement_id",
	TabAdmins:          "admin_id",
	TabPartnerRequests: "request_id",
}
