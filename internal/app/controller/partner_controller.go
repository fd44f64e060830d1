package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
)

type PartnerController struct {
	partnerService service.PartnerService
	requestService service.PartnerRequestService
}

func NewPartnerController(partnerService service.PartnerService, requestService service.PartnerRequestService) *PartnerController {
	return &PartnerController{
		partnerService: partnerService,
		requestService: requestService,
	}
}

const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionRegister = "register"
)

// PartnerActionRequest 관리자 파트너 관리 화면의 POST 본문
// 검토자는 본문이 아니라 로그인한 관리자 세션에서 가져온다
type PartnerActionRequest struct {
	Action      string               `json:"action"`
	RequestID   string               `json:"requestId"`
	PartnerData service.PartnerInput `json:"partnerData"`
}

// UpdatePartnerRequest partnerId 와 바꿀 필드만
type UpdatePartnerRequest struct {
	PartnerID string `json:"partnerId"`
	service.PartnerPatch
}

// SearchPartners 상위 파트너 검색 (2글자 미만이면 빈 결과)
// GET /api/partners/search?q=
func (ctrl *PartnerController) SearchPartners(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	results, err := ctrl.partnerService.SearchPartners(c.Query("q"))
	if err != nil {
		log.Error("Failed to search partners", err, map[string]interface{}{
			"q": c.Query("q"),
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "search partners")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"results": results,
	})
}

// GetPublicPartner 랜딩 페이지. 경로 파라미터는 전용 URL 이다
// GET /api/partners/:partnerId
func (ctrl *PartnerController) GetPublicPartner(c *gin.Context) {
	customURL := strings.ToLower(strings.TrimSpace(c.Param("partnerId")))

	partner, err := ctrl.partnerService.GetPublicPartner(customURL)
	if err != nil {
		if !isClientError(err) {
			middleware.GetLoggerFromContext(c).Error("Failed to load public partner", err, map[string]interface{}{
				"custom_url": customURL,
			})
		}
		respondServiceError(c, err, "get partner")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    partner,
	})
}

// Apply 파트너 입점 신청. 파트너 요청이 들어오는 유일한 경로다
// POST /api/partner/apply
func (ctrl *PartnerController) Apply(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.PartnerApplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid partner apply request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithValidationError(c, "필수 정보가 누락되었습니다", util.ValidationFields(err))
		return
	}

	req, err := ctrl.requestService.Apply(input)
	if err != nil {
		log.Error("Failed to save partner request", err, map[string]interface{}{
			"company_name": input.CompanyName,
		})
		respondServiceError(c, err, "create partner request")
		return
	}

	log.Info("Partner request received", map[string]interface{}{
		"request_id": req.RequestID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"requestId": req.RequestID,
		},
		"message": "파트너 신청이 완료되었습니다",
	})
}

// UpdateProfile 파트너가 자기 랜딩 페이지를 꾸민다
// PUT /api/partner-center/profile
func (ctrl *PartnerController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	session, ok := middleware.GetSession(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var patch service.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apperrors.RespondWithValidationError(c, "", util.ValidationFields(err))
		return
	}

	partner, err := ctrl.partnerService.UpdateProfile(session.PartnerID, patch)
	if err != nil {
		log.Error("Failed to update profile", err, map[string]interface{}{
			"partner_id": session.PartnerID,
		})
		respondServiceError(c, err, "update partner")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "정보가 수정되었습니다",
		"data":    partner,
	})
}

// ListPartners 전체 목록, id 가 있으면 한 건
// GET /api/admin/partners?id=
func (ctrl *PartnerController) ListPartners(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if id := strings.TrimSpace(c.Query("id")); id != "" {
		partner, err := ctrl.partnerService.GetPartner(id)
		if err != nil {
			respondServiceError(c, err, "get partner")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    partner,
		})
		return
	}

	partners, err := ctrl.partnerService.ListPartners()
	if err != nil {
		log.Error("Failed to list partners", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list partners")
		return
	}
	pending, err := ctrl.requestService.ListPending()
	if err != nil {
		log.Error("Failed to list partner requests", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list partner requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"data":            partners,
		"pendingRequests": pending,
	})
}

// PartnerAction approve / reject / register
// POST /api/admin/partners
func (ctrl *PartnerController) PartnerAction(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PartnerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid partner action request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithValidationError(c, "", util.ValidationFields(err))
		return
	}
	if req.Action == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidAction, "액션이 지정되지 않았습니다")
		return
	}
	if (req.Action == ActionApprove || req.Action == ActionReject) && strings.TrimSpace(req.RequestID) == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "신청 ID가 필요합니다")
		return
	}

	session, ok := middleware.GetSession(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	reviewer := session.PartnerID

	switch req.Action {
	case ActionApprove:
		partner, err := ctrl.requestService.Approve(req.RequestID, reviewer, req.PartnerData)
		if err != nil {
			ctrl.logActionError(c, req.Action, err)
			respondServiceError(c, err, "approve partner request")
			return
		}
		log.Info("Partner request approved", map[string]interface{}{
			"request_id": req.RequestID,
			"partner_id": partner.PartnerID,
		})
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "파트너가 승인되었습니다",
			"data":    partner,
		})

	case ActionReject:
		if err := ctrl.requestService.Reject(req.RequestID, reviewer); err != nil {
			ctrl.logActionError(c, req.Action, err)
			respondServiceError(c, err, "reject partner request")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "파트너 신청이 거부되었습니다",
		})

	case ActionRegister:
		req.PartnerData.ApprovedBy = reviewer
		partner, err := ctrl.partnerService.RegisterPartner(req.PartnerData)
		if err != nil {
			ctrl.logActionError(c, req.Action, err)
			respondServiceError(c, err, "create partner")
			return
		}
		log.Info("Partner registered", map[string]interface{}{
			"partner_id": partner.PartnerID,
		})
		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "파트너가 등록되었습니다",
			"data":    partner,
		})

	default:
		apperrors.BadRequest(c, apperrors.ValidationInvalidAction, "유효하지 않은 액션입니다")
	}
}

func (ctrl *PartnerController) logActionError(c *gin.Context, action string, err error) {
	log := middleware.GetLoggerFromContext(c)
	fields := map[string]interface{}{"action": action}
	if isClientError(err) {
		fields["error"] = err.Error()
		log.Warn("Partner action rejected", fields)
		return
	}
	log.Error("Partner action failed", err, fields)
}

// UpdatePartner PUT /api/admin/partners
func (ctrl *PartnerController) UpdatePartner(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdatePartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, "", util.ValidationFields(err))
		return
	}
	if strings.TrimSpace(req.PartnerID) == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "파트너 ID가 필요합니다")
		return
	}

	found, err := ctrl.partnerService.UpdatePartner(req.PartnerID, req.PartnerPatch)
	if err != nil {
		log.Error("Failed to update partner", err, map[string]interface{}{
			"partner_id": req.PartnerID,
		})
		respondServiceError(c, err, "update partner")
		return
	}
	if !found {
		apperrors.NotFound(c, apperrors.PartnerNotFound, "파트너를 찾을 수 없습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "파트너 정보가 업데이트되었습니다",
	})
}

// DeletePartner 하위 파트너나 고객 신청이 있으면 거절한다
// DELETE /api/admin/partners?id=
func (ctrl *PartnerController) DeletePartner(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "파트너 ID가 필요합니다")
		return
	}

	found, err := ctrl.partnerService.DeletePartner(id)
	if err != nil {
		if isClientError(err) {
			log.Warn("Partner delete refused", map[string]interface{}{
				"partner_id": id,
				"error":      err.Error(),
			})
		} else {
			log.Error("Failed to delete partner", err, map[string]interface{}{
				"partner_id": id,
			})
		}
		respondServiceError(c, err, "delete partner")
		return
	}
	if !found {
		apperrors.NotFound(c, apperrors.PartnerNotFound, "파트너를 찾을 수 없습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "파트너가 삭제되었습니다",
	})
}
