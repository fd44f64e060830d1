package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
)

type DashboardController struct {
	dashboardService service.DashboardService
}

func NewDashboardController(dashboardService service.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboardData 범위는 토큰에서 정한다. partnerId 는 범위 안에서 좁히는 용도다
// GET /api/partner-center/dashboard-data?partnerId=
func (ctrl *DashboardController) GetDashboardData(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	session, ok := middleware.GetSession(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	partnerID := strings.TrimSpace(c.Query("partnerId"))
	data, err := ctrl.dashboardService.GetDashboardData(session, partnerID)
	if err != nil {
		if isClientError(err) {
			log.Warn("Dashboard request refused", map[string]interface{}{
				"session":    session.PartnerID,
				"partner_id": partnerID,
				"error":      err.Error(),
			})
		} else {
			log.Error("Failed to load dashboard data", err, map[string]interface{}{
				"session": session.PartnerID,
			})
		}
		respondServiceError(c, err, "get partner")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"isAdmin":         data.IsAdmin,
		"customers":       data.Customers,
		"partners":        data.Partners,
		"pendingRequests": data.PendingRequests,
		"stats":           data.Stats,
	})
}
