package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ApplicationController struct {
	applicationService service.ApplicationService
	partnerService     service.PartnerService
	exportService      service.ExportService
}

func NewApplicationController(
	applicationService service.ApplicationService,
	partnerService service.PartnerService,
	exportService service.ExportService,
) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
		partnerService:     partnerService,
		exportService:      exportService,
	}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Memo   string `json:"memo"`
}

type UpdateAssigneeRequest struct {
	AssignedTo string `json:"assignedTo"`
}

// CreateApplication 랜딩 페이지 상담 신청
// POST /api/applications
func (ctrl *ApplicationController) CreateApplication(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid application request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithValidationError(c, "", util.ValidationFields(err))
		return
	}

	app, err := ctrl.applicationService.Create(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerNotFound), errors.Is(err, service.ErrPartnerInactive):
			log.Warn("Application for unknown partner", map[string]interface{}{
				"partner_ref": input.PartnerID,
			})
			apperrors.BadRequest(c, apperrors.PartnerInactive, "유효하지 않은 파트너입니다")
		case isClientError(err):
			respondServiceError(c, err, "create application")
		default:
			log.Error("Failed to create application", err, map[string]interface{}{
				"partner_ref": input.PartnerID,
			})
			apperrors.InternalError(c, "신청 처리 중 오류가 발생했습니다")
		}
		return
	}

	log.Info("Application created", map[string]interface{}{
		"application_no": app.ApplicationNo,
		"partner_id":     app.PartnerID,
		"product_type":   app.ProductType,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"applicationNo": app.ApplicationNo,
		},
		"message": "신청이 완료되었습니다",
	})
}

// ListApplications 관리자는 전체, 파트너는 본인 + 하위 파트너
// GET /api/applications?partnerId=&status=&q=&period=&from=&to=&page=&pageSize=
func (ctrl *ApplicationController) ListApplications(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	scope, ok := ctrl.scope(c)
	if !ok {
		return
	}

	var query service.ApplicationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperrors.RespondWithValidationError(c, "", util.ValidationFields(err))
		return
	}

	page, err := ctrl.applicationService.List(scope, query)
	if err != nil {
		if !isClientError(err) {
			log.Error("Failed to list applications", err)
		}
		respondServiceError(c, err, "list applications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     page.Items,
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

// UpdateStatus PATCH /api/applications/:id/status
func (ctrl *ApplicationController) UpdateStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Status) == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "변경할 상태값이 필요합니다")
		return
	}

	scope, ok := ctrl.scope(c)
	if !ok {
		return
	}
	session, _ := middleware.GetSession(c)

	applicationNo := c.Param("id")
	app, err := ctrl.applicationService.UpdateStatus(
		scope,
		applicationNo,
		model.ApplicationStatus(strings.TrimSpace(req.Status)),
		changedBy(session),
		req.Memo,
	)
	if err != nil {
		if !isClientError(err) {
			log.Error("Failed to update application status", err, map[string]interface{}{
				"application_no": applicationNo,
			})
		}
		respondServiceError(c, err, "update application")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "상태가 변경되었습니다",
		"data":    app,
	})
}

// UpdateAssignee 관리자 전용
// PATCH /api/applications/:id/assignee
func (ctrl *ApplicationController) UpdateAssignee(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UpdateAssigneeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}

	applicationNo := c.Param("id")
	found, err := ctrl.applicationService.UpdateAssignee(applicationNo, req.AssignedTo)
	if err != nil {
		log.Error("Failed to update assignee", err, map[string]interface{}{
			"application_no": applicationNo,
		})
		respondServiceError(c, err, "update application")
		return
	}
	if !found {
		apperrors.NotFound(c, apperrors.ApplicationNotFound, "신청 내역을 찾을 수 없습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "담당자가 변경되었습니다",
	})
}

// History GET /api/applications/:id/history
func (ctrl *ApplicationController) History(c *gin.Context) {
	scope, ok := ctrl.scope(c)
	if !ok {
		return
	}

	history, err := ctrl.applicationService.History(scope, c.Param("id"))
	if err != nil {
		if !isClientError(err) {
			middleware.GetLoggerFromContext(c).Error("Failed to load status history", err)
		}
		respondServiceError(c, err, "get application")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    history,
	})
}

// Export 목록 필터 그대로 xlsx 로 내려준다
// GET /api/admin/applications/export
func (ctrl *ApplicationController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	scope, ok := ctrl.scope(c)
	if !ok {
		return
	}

	var query service.ApplicationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		apperrors.RespondWithValidationError(c, "", util.ValidationFields(err))
		return
	}

	data, err := ctrl.exportService.ExportApplications(scope, query)
	if err != nil {
		if !isClientError(err) {
			log.Error("Failed to export applications", err)
		}
		respondServiceError(c, err, "export applications")
		return
	}

	filename := fmt.Sprintf("applications-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// scope 토큰 세션 기준 조회 범위. 실패하면 응답까지 쓰고 false
func (ctrl *ApplicationController) scope(c *gin.Context) (service.Scope, bool) {
	session, ok := middleware.GetSession(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return service.Scope{}, false
	}
	scope, err := ctrl.partnerService.ScopeFor(session)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to resolve partner scope", err, map[string]interface{}{
			"partner_id": session.PartnerID,
		})
		respondServiceError(c, err, "get partner")
		return service.Scope{}, false
	}
	return scope, true
}

func changedBy(session *model.Session) string {
	if session == nil {
		return ""
	}
	if session.Name != "" {
		return session.Name
	}
	return session.PartnerID
}
