package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 파트너센터 프론트는 이 코드로 분기하고, message 는 그대로 노출한다

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 아이디/비밀번호
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // 토큰 만료
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // 잘못된 토큰
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"       // 로그아웃된 토큰

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"     // 접근 권한 없음
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // 권한 정보 없음
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"    // 관리자만 가능
	AuthzOutOfScope   = "AUTHZ_OUT_OF_SCOPE"  // 내 파트너 범위 밖

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목
	ValidationInvalidAction = "VALIDATION_INVALID_ACTION" // 알 수 없는 action

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 파트너 (PARTNER_) ====================
	PartnerNotFound        = "PARTNER_NOT_FOUND"         // 파트너 없음
	PartnerInactive        = "PARTNER_INACTIVE"          // 비활성 파트너
	PartnerLoginIDTaken    = "PARTNER_LOGIN_ID_TAKEN"    // 아이디 중복
	PartnerCustomURLTaken  = "PARTNER_CUSTOM_URL_TAKEN"  // 전용 URL 중복
	PartnerHasChildren     = "PARTNER_HAS_CHILDREN"      // 하위 파트너가 있어 삭제 불가
	PartnerHasApplications = "PARTNER_HAS_APPLICATIONS"  // 고객 신청이 있어 삭제 불가
	PartnerInvalidParent   = "PARTNER_INVALID_PARENT"    // 상위 파트너 없음

	// ==================== 파트너 신청 (REQUEST_) ====================
	RequestNotFound        = "REQUEST_NOT_FOUND"         // 신청 없음
	RequestAlreadyReviewed = "REQUEST_ALREADY_REVIEWED"  // 이미 승인/거절됨
	RequestSettingsMissing = "REQUEST_SETTINGS_MISSING"  // 승인 시 URL/아이디/비밀번호 누락

	// ==================== 고객 신청 (APPLICATION_) ====================
	ApplicationNotFound          = "APPLICATION_NOT_FOUND"          // 신청 없음
	ApplicationInvalidStatus     = "APPLICATION_INVALID_STATUS"     // 알 수 없는 상태값
	ApplicationInvalidTransition = "APPLICATION_INVALID_TRANSITION" // 허용되지 않는 상태 변경
	ApplicationInvalidProduct    = "APPLICATION_INVALID_PRODUCT"    // 알 수 없는 상품

	// ==================== 구글 시트 (SHEETS_) ====================
	SheetsNotConfigured    = "SHEETS_NOT_CONFIGURED"    // 환경변수 없음
	SheetsPermissionDenied = "SHEETS_PERMISSION_DENIED" // 서비스 계정 권한 없음
	SheetsNotFound         = "SHEETS_NOT_FOUND"         // 스프레드시트 없음

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFailed          = "UPLOAD_FAILED"            // 업로드 실패

	// ==================== 요청 제한 (RATE_) ====================
	RateLimited = "RATE_LIMITED" // 요청이 너무 많음

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"   // 설정 오류
)
