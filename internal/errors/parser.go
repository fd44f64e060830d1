package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 친화적 메시지
}

// ParseError DB 계층 에러를 코드와 한글 메시지로 바꾼다.
// postgres(pgx) 와 테스트용 sqlite 의 에러 문구를 모두 다룬다.
// 서비스 계층의 sentinel 에러는 controller 에서 errors.Is 로 먼저 처리한다
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "서버 오류가 발생했습니다",
		}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	errLower := strings.ToLower(err.Error())

	// 23505 (postgres) / UNIQUE constraint failed (sqlite)
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// 23503
	if strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "연결된 데이터가 있어 처리할 수 없습니다",
		}
	}

	// 23502
	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "필수 항목이 누락되었습니다",
		}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "외부 서비스 연결에 실패했습니다. 잠시 후 다시 시도해주세요",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

// IsDuplicateKey unique 제약 위반 여부
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint")
}

// DuplicateColumn 어느 unique 컬럼이 충돌했는지 ("login_id", "custom_url", ...). 모르면 빈 문자열
func DuplicateColumn(err error) string {
	if !IsDuplicateKey(err) {
		return ""
	}
	errLower := strings.ToLower(err.Error())
	for _, col := range []string{"login_id", "custom_url", "application_no", "partner_id", "request_id", "history_id", "admin_id", "email"} {
		if strings.Contains(errLower, col) {
			return col
		}
	}
	return ""
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "login_id"):
		return ErrorInfo{Code: PartnerLoginIDTaken, Message: "이미 사용 중인 아이디입니다"}
	case strings.Contains(errLower, "custom_url"):
		return ErrorInfo{Code: PartnerCustomURLTaken, Message: "이미 사용 중인 전용 URL입니다"}
	case strings.Contains(errLower, "application_no"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "신청번호가 중복되었습니다. 다시 시도해주세요"}
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "이미 등록된 이메일입니다"}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "이미 존재하는 데이터입니다",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "request") || strings.Contains(contextLower, "신청서"):
		return "신청을 찾을 수 없습니다"
	case strings.Contains(contextLower, "partner") || strings.Contains(contextLower, "파트너"):
		return "파트너를 찾을 수 없습니다"
	case strings.Contains(contextLower, "application") || strings.Contains(contextLower, "고객"):
		return "고객 신청을 찾을 수 없습니다"
	case strings.Contains(contextLower, "admin") || strings.Contains(contextLower, "관리자"):
		return "관리자를 찾을 수 없습니다"
	}
	return "요청한 데이터를 찾을 수 없습니다"
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)

	switch {
	case strings.Contains(contextLower, "create") || strings.Contains(contextLower, "등록"):
		return "등록 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "update") || strings.Contains(contextLower, "수정"):
		return "수정 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	case strings.Contains(contextLower, "delete") || strings.Contains(contextLower, "삭제"):
		return "삭제 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
	}
	return "서버 오류가 발생했습니다. 잠시 후 다시 시도해주세요"
}

// ParseAndRespond 에러를 파싱하여 응답 반환 (헬퍼 함수)
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
