package service

import (
	"bytes"

	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
)

// applicationLabels 엑셀 첫 행 (관리자 화면 표기)
var applicationLabels = map[string]string{
	"application_no":         "신청번호",
	"partner_id":             "파트너ID",
	"partner_name":           "파트너명",
	"product_type":           "상품",
	"plan_type":              "플랜",
	"products":               "선택 가전",
	"customer_name":          "고객명",
	"customer_birth":         "생년월일",
	"customer_gender":        "성별",
	"customer_phone":         "연락처",
	"customer_email":         "이메일",
	"customer_address":       "주소",
	"customer_zipcode":       "우편번호",
	"partner_member_id":      "쇼핑몰 회원ID",
	"preferred_contact_time": "상담 희망 시간",
	"inquiry":                "문의사항",
	"status":                 "상태",
	"assigned_to":            "담당자",
	"created_at":             "신청일시",
	"updated_at":             "수정일시",
	"contract_date":          "계약일",
	"delivery_date":          "배송일",
	"settlement_date":        "정산일",
}

type ExportService interface {
	ExportApplications(scope Scope, query ApplicationQuery) ([]byte, error)
}

type exportService struct {
	applications ApplicationService
}

func NewExportService(applications ApplicationService) ExportService {
	return &exportService{applications: applications}
}

// ExportApplications 목록 필터를 그대로 쓰고 페이지는 무시한다
func (s *exportService) ExportApplications(scope Scope, query ApplicationQuery) ([]byte, error) {
	query.Page = 1
	query.PageSize = maxPageSize

	var rows []sheets.Row
	for {
		page, err := s.applications.List(scope, query)
		if err != nil {
			return nil, err
		}
		for i := range page.Items {
			row, err := toSheetRow(&page.Items[i])
			if err != nil {
				return nil, err
			}
			rows = append(rows, row)
		}
		if int64(query.Page*query.PageSize) >= page.Total || len(page.Items) == 0 {
			break
		}
		query.Page++
	}

	var buf bytes.Buffer
	if err := sheets.WriteXLSX(&buf, sheets.TabApplications, rows, applicationLabels); err != nil {
		logger.Error("Failed to write applications xlsx", err)
		return nil, err
	}

	logger.Info("Applications exported", map[string]interface{}{
		"rows": len(rows),
	})
	return buf.Bytes(), nil
}
