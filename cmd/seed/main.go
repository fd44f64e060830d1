package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/db"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
)

// 기본 관리자/데모 파트너를 만들고, xlsx 경로를 주면 시트 백업 파일도 들여온다.
//
//	go run ./cmd/seed
//	go run ./cmd/seed -xlsx ./backup.xlsx -yes
func main() {
	xlsxPath := flag.String("xlsx", "", "구글 시트를 xlsx 로 내려받은 파일 경로")
	yes := flag.Bool("yes", false, "확인 없이 진행")
	flag.Parse()

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// DB 연결
	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	seeded, err := db.Seed(cfg.Seed)
	if err != nil {
		log.Fatal("Failed to seed initial data:", err)
	}
	fmt.Printf("Admin created: %v, demo partner created: %v\n", seeded.AdminCreated, seeded.DemoPartnerCreated)

	if *xlsxPath == "" {
		return
	}

	fmt.Printf("Reading XLSX file: %s\n", *xlsxPath)
	file, err := sheets.OpenXLSX(*xlsxPath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	defer file.Close()

	// 사용자 확인
	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	gdb := db.GetDB()
	importer := service.NewSheetImportService(
		repository.NewPartnerRepository(gdb),
		repository.NewApplicationRepository(gdb),
		repository.NewPartnerRequestRepository(gdb),
		repository.NewAdminRepository(gdb),
		repository.NewSettlementRepository(gdb),
	)

	result, err := importer.ImportAll(context.Background(), file)
	if err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Println("Import completed successfully!")
	printResult(result)
}

func printResult(r *service.ImportResult) {
	fmt.Printf("  admins:           %d\n", r.Admins)
	fmt.Printf("  partners:         %d\n", r.Partners)
	fmt.Printf("  partner requests: %d\n", r.PartnerRequests)
	fmt.Printf("  applications:     %d (partnerId fixed: %d)\n", r.Applications, r.Reassigned)
	fmt.Printf("  status history:   %d\n", r.History)
	fmt.Printf("  settlements:      %d\n", r.Settlements)
	fmt.Printf("  skipped rows:     %d\n", r.Skipped)
}
