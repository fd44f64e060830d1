package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/ikkim/sangjo-partner-backend/internal/storage"
	"github.com/ikkim/sangjo-partner-backend/pkg/catalog"
)

type errorMapping struct {
	status  int
	code    string
	message string
}

// serviceErrors 서비스 sentinel 에러 → HTTP 응답
var serviceErrors = []struct {
	err error
	errorMapping
}{
	{service.ErrPartnerNotFound, errorMapping{http.StatusNotFound, apperrors.PartnerNotFound, "파트너를 찾을 수 없습니다"}},
	{service.ErrPartnerInactive, errorMapping{http.StatusBadRequest, apperrors.PartnerInactive, "유효하지 않은 파트너입니다"}},
	{service.ErrLoginIDTaken, errorMapping{http.StatusConflict, apperrors.PartnerLoginIDTaken, "이미 사용 중인 아이디입니다"}},
	{service.ErrCustomURLTaken, errorMapping{http.StatusConflict, apperrors.PartnerCustomURLTaken, "이미 사용 중인 전용 URL입니다"}},
	{service.ErrPartnerIDTaken, errorMapping{http.StatusConflict, apperrors.ResourceAlreadyExists, "이미 존재하는 파트너 ID입니다"}},
	{service.ErrPartnerHasChildren, errorMapping{http.StatusConflict, apperrors.PartnerHasChildren, "하위 파트너가 있어 삭제할 수 없습니다"}},
	{service.ErrPartnerHasApplications, errorMapping{http.StatusConflict, apperrors.PartnerHasApplications, "고객 신청 내역이 있어 삭제할 수 없습니다"}},
	{service.ErrInvalidParent, errorMapping{http.StatusBadRequest, apperrors.PartnerInvalidParent, "상위 파트너를 찾을 수 없습니다"}},
	{service.ErrPartnerSettingsRequired, errorMapping{http.StatusBadRequest, apperrors.RequestSettingsMissing, "파트너 설정 정보가 필요합니다"}},
	{service.ErrMissingRequiredFields, errorMapping{http.StatusBadRequest, apperrors.ValidationRequired, "필수 정보가 누락되었습니다"}},
	{service.ErrPasswordTooLong, errorMapping{http.StatusBadRequest, apperrors.ValidationInvalidInput, "비밀번호는 72바이트 이하로 입력해주세요"}},
	{service.ErrOutOfScope, errorMapping{http.StatusForbidden, apperrors.AuthzOutOfScope, "조회 권한이 없는 파트너입니다"}},

	{service.ErrRequestNotFound, errorMapping{http.StatusNotFound, apperrors.RequestNotFound, "신청을 찾을 수 없습니다"}},
	{service.ErrRequestAlreadyReviewed, errorMapping{http.StatusConflict, apperrors.RequestAlreadyReviewed, "이미 처리된 신청입니다"}},

	{service.ErrApplicationNotFound, errorMapping{http.StatusNotFound, apperrors.ApplicationNotFound, "신청 내역을 찾을 수 없습니다"}},
	{service.ErrInvalidProduct, errorMapping{http.StatusBadRequest, apperrors.ApplicationInvalidProduct, "유효하지 않은 상품입니다"}},
	{service.ErrInvalidStatus, errorMapping{http.StatusBadRequest, apperrors.ApplicationInvalidStatus, "유효하지 않은 상태값입니다"}},
	{service.ErrInvalidStatusTransition, errorMapping{http.StatusConflict, apperrors.ApplicationInvalidTransition, "변경할 수 없는 상태입니다"}},
	{service.ErrInvalidPeriod, errorMapping{http.StatusBadRequest, apperrors.ValidationInvalidFormat, "조회 기간이 올바르지 않습니다"}},

	{sheets.ErrNotConfigured, errorMapping{http.StatusServiceUnavailable, apperrors.SheetsNotConfigured, "Google Sheets 연결이 설정되지 않았습니다. 관리자에게 문의하세요"}},
	{sheets.ErrPermissionDenied, errorMapping{http.StatusBadGateway, apperrors.SheetsPermissionDenied, "Google Sheets 접근 권한이 없습니다. 서비스 계정을 시트에 공유해주세요"}},
	{sheets.ErrSpreadsheetNotFound, errorMapping{http.StatusBadGateway, apperrors.SheetsNotFound, "Google Sheets를 찾을 수 없습니다. 시트 ID를 확인해주세요"}},

	{catalog.ErrNotConfigured, errorMapping{http.StatusServiceUnavailable, apperrors.InternalConfigError, "상품 카탈로그가 설정되지 않았습니다"}},
	{catalog.ErrNetworkError, errorMapping{http.StatusBadGateway, apperrors.InternalExternalAPI, "외부 서비스 연결에 실패했습니다. 잠시 후 다시 시도해주세요"}},
	{catalog.ErrUpstream, errorMapping{http.StatusBadGateway, apperrors.InternalExternalAPI, "외부 서비스 연결에 실패했습니다. 잠시 후 다시 시도해주세요"}},
	{catalog.ErrInvalidResponse, errorMapping{http.StatusBadGateway, apperrors.InternalExternalAPI, "외부 서비스 응답을 처리할 수 없습니다"}},

	{storage.ErrFileTooLarge, errorMapping{http.StatusBadRequest, apperrors.UploadInvalidFileType, "로고 파일은 2MB 이하만 업로드할 수 있습니다"}},
	{storage.ErrContentTypeInvalid, errorMapping{http.StatusBadRequest, apperrors.UploadInvalidFileType, "PNG, JPEG, WEBP, SVG 이미지만 업로드할 수 있습니다"}},
}

// respondServiceError 알려진 sentinel 이면 매핑된 응답, 아니면 DB 에러 파서로 넘긴다
func respondServiceError(c *gin.Context, err error, context string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			apperrors.RespondWithError(c, m.status, m.code, m.message)
			return
		}
	}
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
}

// isClientError 4xx 로 끝나는 에러는 Warn 으로만 남긴다
func isClientError(err error) bool {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return m.status < http.StatusInternalServerError
		}
	}
	return false
}
