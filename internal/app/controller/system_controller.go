package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/db"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type SystemController struct {
	gdb       *gorm.DB
	mirror    service.SheetMirrorService
	sheetsCfg config.SheetsConfig
	seedCfg   config.SeedConfig
}

func NewSystemController(
	gdb *gorm.DB,
	mirror service.SheetMirrorService,
	sheetsCfg config.SheetsConfig,
	seedCfg config.SeedConfig,
) *SystemController {
	return &SystemController{
		gdb:       gdb,
		mirror:    mirror,
		sheetsCfg: sheetsCfg,
		seedCfg:   seedCfg,
	}
}

// Ping 환경변수는 값이 아니라 존재 여부만 알려준다
// GET /api/ping
func (ctrl *SystemController) Ping(c *gin.Context) {
	status := http.StatusOK
	database := "ok"
	if err := ctrl.pingDB(c.Request.Context()); err != nil {
		middleware.GetLoggerFromContext(c).Error("Database ping failed", err)
		status = http.StatusServiceUnavailable
		database = "unavailable"
	}

	c.JSON(status, gin.H{
		"success":  status == http.StatusOK,
		"message":  "API is working",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"database": database,
		"env": gin.H{
			"hasEmail":   ctrl.sheetsCfg.ServiceAccountEmail != "",
			"hasKey":     ctrl.sheetsCfg.PrivateKey != "",
			"hasSheetId": ctrl.sheetsCfg.SpreadsheetID != "",
		},
	})
}

func (ctrl *SystemController) pingDB(ctx context.Context) error {
	sqlDB, err := ctrl.gdb.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// InitSheetsStatus DB 건수와 시트 탭 상태
// GET /api/admin/init-sheets
func (ctrl *SystemController) InitSheetsStatus(c *gin.Context) {
	status, err := ctrl.mirror.Status(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load init status", err)
		respondServiceError(c, err, "init sheets")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    status,
	})
}

// InitSheets 시드 데이터를 넣고 시트 탭/헤더를 맞춘다. 여러 번 호출해도 된다
// POST /api/admin/init-sheets
func (ctrl *SystemController) InitSheets(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	ctx := c.Request.Context()

	seeded, err := db.SeedInitialData(ctrl.gdb, ctrl.seedCfg)
	if err != nil {
		log.Error("Failed to seed initial data", err)
		apperrors.InternalError(c, "초기 데이터 생성 중 오류가 발생했습니다")
		return
	}

	sheetsReady := true
	if err := ctrl.mirror.EnsureTabs(ctx); err != nil {
		if !errors.Is(err, sheets.ErrNotConfigured) {
			log.Error("Failed to prepare sheet tabs", err)
			respondServiceError(c, err, "init sheets")
			return
		}
		sheetsReady = false
	}

	var synced *service.SyncResult
	if sheetsReady {
		synced, err = ctrl.mirror.Sync(ctx)
		if err != nil {
			log.Error("Initial sheet sync failed", err)
			respondServiceError(c, err, "init sheets")
			return
		}
	}

	log.Info("Init sheets completed", map[string]interface{}{
		"admin_created":        seeded.AdminCreated,
		"demo_partner_created": seeded.DemoPartnerCreated,
		"sheets_ready":         sheetsReady,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "초기화가 완료되었습니다",
		"seed":        seeded,
		"sheetsReady": sheetsReady,
		"synced":      synced,
	})
}

// SyncSheets 미러를 바로 한 번 돌린다
// POST /api/admin/sheets/sync
func (ctrl *SystemController) SyncSheets(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	result, err := ctrl.mirror.Sync(c.Request.Context())
	if err != nil {
		if isClientError(err) || errors.Is(err, sheets.ErrNotConfigured) {
			log.Warn("Sheet sync skipped", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			log.Error("Sheet sync failed", err)
		}
		respondServiceError(c, err, "sync sheets")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
