package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/db"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
)

// 운영 중인 구글 시트를 DB 로 옮긴다. 여러 번 돌려도 같은 결과가 된다
func main() {
	dryRun := flag.Bool("dry-run", false, "탭별 행 수만 출력")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}
	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workbook, err := sheets.NewWorkbook(ctx, cfg.Sheets)
	if err != nil {
		logger.Fatal("Failed to open spreadsheet", err)
	}

	if *dryRun {
		for _, tab := range sheets.Tabs {
			rows, err := workbook.GetAllRows(ctx, tab)
			if err != nil {
				logger.Fatal("Failed to read tab", err, map[string]interface{}{"tab": tab})
			}
			logger.Info("Tab", map[string]interface{}{"tab": tab, "rows": len(rows)})
		}
		return
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	gdb := db.GetDB()
	importer := service.NewSheetImportService(
		repository.NewPartnerRepository(gdb),
		repository.NewApplicationRepository(gdb),
		repository.NewPartnerRequestRepository(gdb),
		repository.NewAdminRepository(gdb),
		repository.NewSettlementRepository(gdb),
	)

	result, err := importer.ImportAll(ctx, workbook)
	if err != nil {
		logger.Error("Sheet import failed", err)
		os.Exit(1)
	}

	logger.Info("Sheet import completed", map[string]interface{}{
		"admins":           result.Admins,
		"partners":         result.Partners,
		"partner_requests": result.PartnerRequests,
		"applications":     result.Applications,
		"history":          result.History,
		"settlements":      result.Settlements,
		"skipped":          result.Skipped,
		"reassigned":       result.Reassigned,
	})
}
