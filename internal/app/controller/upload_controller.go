package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/ikkim/sangjo-partner-backend/internal/storage"
)

// LogoPresigner *storage.S3Storage
type LogoPresigner interface {
	PresignLogoUpload(ctx context.Context, partnerID, contentType string, size int64) (*storage.PresignedURLResponse, error)
}

type UploadController struct {
	storage LogoPresigner
}

// NewUploadController storage 가 nil 이면 업로드가 꺼진 것으로 응답한다
func NewUploadController(storage LogoPresigner) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type PresignLogoRequest struct {
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
	PartnerID   string `json:"partnerId"` // 관리자가 다른 파트너 로고를 올릴 때
}

// PresignLogo 로고 업로드용 presigned PUT URL. 브라우저가 S3 에 바로 올린다
// POST /api/partner-center/logo/presign
func (ctrl *UploadController) PresignLogo(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if ctrl.storage == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.InternalConfigError, "파일 업로드가 설정되지 않았습니다")
		return
	}

	session, ok := middleware.GetSession(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req PresignLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presign request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "파일 형식과 크기가 필요합니다")
		return
	}

	partnerID := session.PartnerID
	if session.IsAdmin() && req.PartnerID != "" {
		partnerID = req.PartnerID
	}

	resp, err := ctrl.storage.PresignLogoUpload(c.Request.Context(), partnerID, req.ContentType, req.Size)
	if err != nil {
		if isClientError(err) {
			respondServiceError(c, err, "upload logo")
			return
		}
		log.Error("Failed to presign logo upload", err, map[string]interface{}{
			"partner_id":   partnerID,
			"content_type": req.ContentType,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "업로드 URL 생성에 실패했습니다")
		return
	}

	log.Info("Logo upload presigned", map[string]interface{}{
		"partner_id": partnerID,
		"key":        resp.Key,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    resp,
	})
}
