package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
)

const mirrorBatchSize = 200

// SyncResult 한 번의 미러 실행에서 시트에 반영한 건수
type SyncResult struct {
	Partners        int `json:"partners"`
	Applications    int `json:"applications"`
	History         int `json:"history"`
	PartnerRequests int `json:"partnerRequests"`
	Removed         int `json:"removed"`
}

// SheetStatus init-sheets 조회 응답의 sheets 부분
type SheetStatus struct {
	Configured bool           `json:"configured"`
	Tabs       map[string]int `json:"tabs,omitempty"` // 탭별 데이터 행 수
	Error      string         `json:"error,omitempty"`
}

// InitStatus DB 건수 + 시트 상태
type InitStatus struct {
	Admins       int64       `json:"admins"`
	Partners     int64       `json:"partners"`
	Applications int64       `json:"applications"`
	Sheets       SheetStatus `json:"sheets"`
}

type SheetMirrorService interface {
	Sync(ctx context.Context) (*SyncResult, error)
	EnsureTabs(ctx context.Context) error
	Status(ctx context.Context) (*InitStatus, error)
	PartnerRemoved(partnerID string)
}

// sheetMirrorService DB 가 원본이고 시트는 운영팀이 보는 사본이다.
// workbook 이 nil 이면 시트 관련 호출은 sheets.ErrNotConfigured
type sheetMirrorService struct {
	workbook        *sheets.Workbook
	partnerRepo     repository.PartnerRepository
	applicationRepo repository.ApplicationRepository
	requestRepo     repository.PartnerRequestRepository
	adminRepo       repository.AdminRepository

	mu sync.Mutex // 동시에 두 번 돌지 않게

	removedMu sync.Mutex
	removed   map[string]struct{}
}

func NewSheetMirrorService(
	workbook *sheets.Workbook,
	partnerRepo repository.PartnerRepository,
	applicationRepo repository.ApplicationRepository,
	requestRepo repository.PartnerRequestRepository,
	adminRepo repository.AdminRepository,
) SheetMirrorService {
	return &sheetMirrorService{
		workbook:        workbook,
		partnerRepo:     partnerRepo,
		applicationRepo: applicationRepo,
		requestRepo:     requestRepo,
		adminRepo:       adminRepo,
		removed:         make(map[string]struct{}),
	}
}

func (s *sheetMirrorService) EnsureTabs(ctx context.Context) error {
	if s.workbook == nil {
		return sheets.ErrNotConfigured
	}
	return s.workbook.EnsureTabs(ctx)
}

// Sync 아직 반영되지 않은 행을 시트에 쓰고 표시한다. 중간에 실패해도 그때까지 쓴 행은 표시돼 있고 건수와 에러를 함께 돌려준다
func (s *sheetMirrorService) Sync(ctx context.Context) (*SyncResult, error) {
	if s.workbook == nil {
		return nil, sheets.ErrNotConfigured
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &SyncResult{}
	if err := s.workbook.EnsureTabs(ctx); err != nil {
		return result, err
	}

	steps := []func(context.Context, *SyncResult) error{
		s.syncPartners,
		s.prunePartners,
		s.syncApplications,
		s.syncHistory,
		s.syncRequests,
	}
	for _, step := range steps {
		if err := step(ctx, result); err != nil {
			logger.Error("Sheet mirror step failed", err, map[string]interface{}{
				"partners":     result.Partners,
				"applications": result.Applications,
			})
			return result, err
		}
	}

	if *result != (SyncResult{}) {
		logger.Info("Sheet mirror completed", map[string]interface{}{
			"partners":         result.Partners,
			"applications":     result.Applications,
			"history":          result.History,
			"partner_requests": result.PartnerRequests,
			"removed":          result.Removed,
		})
	}
	return result, nil
}

// syncPartners 행마다 쓰자마자 표시한다. 중간에 멈춰도 이미 쓴 행은 다시 쓰지 않는다
func (s *sheetMirrorService) syncPartners(ctx context.Context, result *SyncResult) error {
	partners, err := s.partnerRepo.FindUnsynced(mirrorBatchSize)
	if err != nil || len(partners) == 0 {
		return err
	}
	index, err := s.workbook.IndexRows(ctx, sheets.TabPartners)
	if err != nil {
		return err
	}
	for i := range partners {
		p := &partners[i]
		row, err := toSheetRow(p)
		if err != nil {
			return err
		}
		// 비밀번호는 해시도 시트에 두지 않는다
		row["login_password"] = ""
		if err := s.upsertRow(ctx, index, sheets.TabPartners, row); err != nil {
			return err
		}
		result.Partners++
		if _, err := s.partnerRepo.MarkSynced(p.PartnerID, p.SyncVersion); err != nil {
			return err
		}
	}
	return nil
}

// PartnerRemoved 삭제된 파트너를 다음 실행에서 시트에서도 지우도록 기억한다
func (s *sheetMirrorService) PartnerRemoved(partnerID string) {
	s.removedMu.Lock()
	s.removed[partnerID] = struct{}{}
	s.removedMu.Unlock()
}

func (s *sheetMirrorService) forgetRemoved(partnerID string) {
	s.removedMu.Lock()
	delete(s.removed, partnerID)
	s.removedMu.Unlock()
}

// prunePartners 삭제된 파트너 행을 지운다. 시트에만 있는 과거 행은 건드리지 않는다
func (s *sheetMirrorService) prunePartners(ctx context.Context, result *SyncResult) error {
	s.removedMu.Lock()
	pending := make([]string, 0, len(s.removed))
	for id := range s.removed {
		pending = append(pending, id)
	}
	s.removedMu.Unlock()
	if len(pending) == 0 {
		return nil
	}

	index, err := s.workbook.IndexRows(ctx, sheets.TabPartners)
	if err != nil {
		return err
	}
	var rows []*sheets.SheetRow
	for _, id := range pending {
		if row, ok := index[id]; ok {
			rows = append(rows, row)
			continue
		}
		s.forgetRemoved(id)
	}

	// 아래 행부터 지워야 위 행 번호가 밀리지 않는다
	sort.Slice(rows, func(i, j int) bool { return rows[i].Index > rows[j].Index })
	for _, row := range rows {
		if err := s.workbook.DeleteRow(ctx, row); err != nil {
			return err
		}
		result.Removed++
		s.forgetRemoved(row.Data.Get("partner_id"))
	}
	return nil
}

func (s *sheetMirrorService) syncApplications(ctx context.Context, result *SyncResult) error {
	apps, err := s.applicationRepo.FindUnsynced(mirrorBatchSize)
	if err != nil || len(apps) == 0 {
		return err
	}
	index, err := s.workbook.IndexRows(ctx, sheets.TabApplications)
	if err != nil {
		return err
	}
	for i := range apps {
		app := &apps[i]
		row, err := toSheetRow(app)
		if err != nil {
			return err
		}
		if err := s.upsertRow(ctx, index, sheets.TabApplications, row); err != nil {
			return err
		}
		result.Applications++
		if _, err := s.applicationRepo.MarkSynced(app.ApplicationNo, app.SyncVersion); err != nil {
			return err
		}
	}
	return nil
}

// syncHistory 이력은 추가만 한다. 시트에 이미 있는 historyId 는 건너뛴다
func (s *sheetMirrorService) syncHistory(ctx context.Context, result *SyncResult) error {
	history, err := s.applicationRepo.FindUnsyncedHistory(mirrorBatchSize)
	if err != nil || len(history) == 0 {
		return err
	}
	index, err := s.workbook.IndexRows(ctx, sheets.TabStatusHistory)
	if err != nil {
		return err
	}
	for i := range history {
		h := &history[i]
		if _, exists := index[h.HistoryID]; !exists {
			row, err := toSheetRow(h)
			if err != nil {
				return err
			}
			if err := s.workbook.AppendRow(ctx, sheets.TabStatusHistory, row); err != nil {
				return err
			}
			result.History++
		}
		if err := s.applicationRepo.MarkHistorySynced([]string{h.HistoryID}); err != nil {
			return err
		}
	}
	return nil
}

func (s *sheetMirrorService) syncRequests(ctx context.Context, result *SyncResult) error {
	reqs, err := s.requestRepo.FindUnsynced(mirrorBatchSize)
	if err != nil || len(reqs) == 0 {
		return err
	}
	index, err := s.workbook.IndexRows(ctx, sheets.TabPartnerRequests)
	if err != nil {
		return err
	}
	for i := range reqs {
		req := &reqs[i]
		row, err := toSheetRow(req)
		if err != nil {
			return err
		}
		if err := s.upsertRow(ctx, index, sheets.TabPartnerRequests, row); err != nil {
			return err
		}
		result.PartnerRequests++
		if _, err := s.requestRepo.MarkSynced(req.RequestID, req.SyncVersion); err != nil {
			return err
		}
	}
	return nil
}

// upsertRow 미리 읽어 둔 index 에 키가 있으면 그 행을 고치고 없으면 추가
func (s *sheetMirrorService) upsertRow(ctx context.Context, index map[string]*sheets.SheetRow, tab string, row sheets.Row) error {
	if existing, ok := index[row.Get(sheets.KeyColumns[tab])]; ok {
		return s.workbook.MutateRow(ctx, existing, row)
	}
	return s.workbook.AppendRow(ctx, tab, row)
}

func toSheetRow(v interface{}) (sheets.Row, error) {
	rec, err := sheets.RecordFromStruct(v)
	if err != nil {
		return nil, err
	}
	return sheets.ToSnake(rec), nil
}

// Status DB 건수는 항상, 시트는 설정돼 있을 때만 탭별 행 수를 센다
func (s *sheetMirrorService) Status(ctx context.Context) (*InitStatus, error) {
	admins, err := s.adminRepo.Count()
	if err != nil {
		return nil, err
	}
	partners, err := s.partnerRepo.FindAll()
	if err != nil {
		return nil, err
	}
	applications, err := s.applicationRepo.CountTotal(nil)
	if err != nil {
		return nil, err
	}

	status := &InitStatus{
		Admins:       admins,
		Partners:     int64(len(partners)),
		Applications: applications,
		Sheets:       SheetStatus{Configured: s.workbook != nil},
	}
	if s.workbook == nil {
		status.Sheets.Error = sheets.ErrNotConfigured.Error()
		return status, nil
	}

	tabs := make(map[string]int, len(sheets.Tabs))
	names := append([]string(nil), sheets.Tabs...)
	sort.Strings(names)
	for _, tab := range names {
		rows, err := s.workbook.GetAllRows(ctx, tab)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			// 시트 문제는 응답에 담고 DB 건수는 그대로 돌려준다
			status.Sheets.Error = err.Error()
			break
		}
		tabs[tab] = len(rows)
	}
	status.Sheets.Tabs = tabs
	return status, nil
}
