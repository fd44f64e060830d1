package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
)

type SettlementController struct {
	settlementService service.SettlementService
}

func NewSettlementController(settlementService service.SettlementService) *SettlementController {
	return &SettlementController{
		settlementService: settlementService,
	}
}

// ListSettlements 조회 전용 (정산은 시트에서 관리한다)
// GET /api/admin/settlements?partnerId=&month=2024-01
func (ctrl *SettlementController) ListSettlements(c *gin.Context) {
	settlements, err := ctrl.settlementService.List(c.Query("partnerId"), c.Query("month"))
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list settlements", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list settlements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settlements,
	})
}
