package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"golang.org/x/time/rate"
)

// TabInfo 스프레드시트 안의 탭
type TabInfo struct {
	Title   string
	SheetID int64
}

// Backend 스프레드시트 원격 호출. 범위는 A1 표기
type Backend interface {
	ListTabs(ctx context.Context) ([]TabInfo, error)
	AddTab(ctx context.Context, title string) (int64, error)
	GetValues(ctx context.Context, rangeA1 string) ([][]interface{}, error)
	UpdateValues(ctx context.Context, rangeA1 string, values [][]interface{}) error
	AppendValues(ctx context.Context, rangeA1 string, values [][]interface{}) error
	DeleteRows(ctx context.Context, sheetID int64, startIndex, endIndex int64) error
}

// SheetRow FindRow 결과. Index 는 헤더를 뺀 0 기반 데이터 행 번호
type SheetRow struct {
	Tab     string
	Index   int
	Headers []string
	Data    Row
}

// sheetRowNumber 1 기반 시트 행 번호 (1행은 헤더)
func (r *SheetRow) sheetRowNumber() int {
	return r.Index + 2
}

// Workbook 탭 단위 행 CRUD. 모든 호출은 limiter 를 거친다
type Workbook struct {
	backend Backend
	limiter *rate.Limiter

	mu       sync.Mutex
	sheetIDs map[string]int64
	headers  map[string][]string
}

// NewWorkbookWithBackend rps 는 초당 호출 수 (Sheets API 분당 60회 쿼터 기준 1 권장)
func NewWorkbookWithBackend(backend Backend, rps float64) *Workbook {
	if rps <= 0 {
		rps = 1
	}
	return &Workbook{
		backend:  backend,
		limiter:  rate.NewLimiter(rate.Limit(rps), 5),
		sheetIDs: make(map[string]int64),
		headers:  make(map[string][]string),
	}
}

func (w *Workbook) wait(ctx context.Context) error {
	return w.limiter.Wait(ctx)
}

// EnsureTabs 없는 탭은 만들고 헤더를 쓴다.
// 기존 탭의 헤더가 정의보다 짧으면 정의된 헤더로 다시 쓴다 (뒤쪽 컬럼 추가)
func (w *Workbook) EnsureTabs(ctx context.Context) error {
	if err := w.wait(ctx); err != nil {
		return err
	}
	tabs, err := w.backend.ListTabs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tabs: %w", err)
	}

	existing := make(map[string]int64, len(tabs))
	for _, t := range tabs {
		existing[t.Title] = t.SheetID
	}

	for _, tab := range Tabs {
		declared := Headers[tab]

		sheetID, ok := existing[tab]
		if !ok {
			if err := w.wait(ctx); err != nil {
				return err
			}
			sheetID, err = w.backend.AddTab(ctx, tab)
			if err != nil {
				return fmt.Errorf("failed to add tab %s: %w", tab, err)
			}
			if err := w.writeHeaders(ctx, tab, declared); err != nil {
				return err
			}
			logger.Info("Sheet tab created", map[string]interface{}{"tab": tab})
		} else {
			current, err := w.fetchHeaders(ctx, tab)
			if err != nil {
				return err
			}
			if len(current) < len(declared) {
				if err := w.writeHeaders(ctx, tab, declared); err != nil {
					return err
				}
				logger.Info("Sheet headers synchronized", map[string]interface{}{
					"tab":  tab,
					"from": len(current),
					"to":   len(declared),
				})
			}
		}

		w.mu.Lock()
		w.sheetIDs[tab] = sheetID
		w.mu.Unlock()
	}
	return nil
}

func (w *Workbook) writeHeaders(ctx context.Context, tab string, headers []string) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := w.wait(ctx); err != nil {
		return err
	}
	if err := w.backend.UpdateValues(ctx, a1(tab, "A1"), [][]interface{}{row}); err != nil {
		return fmt.Errorf("failed to write headers for %s: %w", tab, err)
	}

	w.mu.Lock()
	w.headers[tab] = append([]string(nil), headers...)
	w.mu.Unlock()
	return nil
}

func (w *Workbook) fetchHeaders(ctx context.Context, tab string) ([]string, error) {
	if err := w.wait(ctx); err != nil {
		return nil, err
	}
	values, err := w.backend.GetValues(ctx, a1(tab, "1:1"))
	if err != nil {
		return nil, fmt.Errorf("failed to read headers for %s: %w", tab, err)
	}
	var headers []string
	if len(values) > 0 {
		headers = cellsToStrings(values[0])
	}

	w.mu.Lock()
	w.headers[tab] = headers
	w.mu.Unlock()
	return headers, nil
}

// tabHeaders 캐시된 헤더. 없으면 시트에서 읽는다
func (w *Workbook) tabHeaders(ctx context.Context, tab string) ([]string, error) {
	if _, ok := Headers[tab]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	w.mu.Lock()
	cached, ok := w.headers[tab]
	w.mu.Unlock()
	if ok && len(cached) > 0 {
		return cached, nil
	}
	headers, err := w.fetchHeaders(ctx, tab)
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return Headers[tab], nil
	}
	return headers, nil
}

// GetAllRows 탭 전체를 읽는다 (헤더 제외)
func (w *Workbook) GetAllRows(ctx context.Context, tab string) ([]Row, error) {
	sheetRows, err := w.loadRows(ctx, tab)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, len(sheetRows))
	for i, r := range sheetRows {
		rows[i] = r.Data
	}
	return rows, nil
}

func (w *Workbook) loadRows(ctx context.Context, tab string) ([]*SheetRow, error) {
	if _, ok := Headers[tab]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	if err := w.wait(ctx); err != nil {
		return nil, err
	}
	values, err := w.backend.GetValues(ctx, a1(tab, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tab, err)
	}
	if len(values) == 0 {
		return nil, nil
	}

	headers := cellsToStrings(values[0])
	w.mu.Lock()
	w.headers[tab] = headers
	w.mu.Unlock()

	rows := make([]*SheetRow, 0, len(values)-1)
	for i, cells := range values[1:] {
		rows = append(rows, &SheetRow{
			Tab:     tab,
			Index:   i,
			Headers: headers,
			Data:    RowFromValues(headers, cells),
		})
	}
	return rows, nil
}

// FindRow 조건에 맞는 첫 행. 없으면 nil, nil
func (w *Workbook) FindRow(ctx context.Context, tab string, predicate func(Row) bool) (*SheetRow, error) {
	rows, err := w.loadRows(ctx, tab)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if predicate(r.Data) {
			return r, nil
		}
	}
	return nil, nil
}

// IndexRows 탭을 한 번 읽어 키 컬럼 값으로 행을 찾을 수 있게 한다. 같은 키가 여러 번 있으면 첫 행
func (w *Workbook) IndexRows(ctx context.Context, tab string) (map[string]*SheetRow, error) {
	key, ok := KeyColumns[tab]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	rows, err := w.loadRows(ctx, tab)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*SheetRow, len(rows))
	for _, r := range rows {
		value := r.Data.Get(key)
		if value == "" {
			continue
		}
		if _, seen := index[value]; !seen {
			index[value] = r
		}
	}
	return index, nil
}

// AppendRow 탭 맨 아래에 행을 추가
func (w *Workbook) AppendRow(ctx context.Context, tab string, row Row) error {
	headers, err := w.tabHeaders(ctx, tab)
	if err != nil {
		return err
	}
	if err := w.wait(ctx); err != nil {
		return err
	}
	if err := w.backend.AppendValues(ctx, a1(tab, "A1"), [][]interface{}{row.Values(headers)}); err != nil {
		return fmt.Errorf("failed to append to %s: %w", tab, err)
	}
	return nil
}

// MutateRow 주어진 컬럼만 바꿔서 행 전체를 다시 쓴다
func (w *Workbook) MutateRow(ctx context.Context, r *SheetRow, fields Row) error {
	merged := make(Row, len(r.Data)+len(fields))
	for k, v := range r.Data {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	if err := w.wait(ctx); err != nil {
		return err
	}
	rng := a1(r.Tab, fmt.Sprintf("A%d", r.sheetRowNumber()))
	if err := w.backend.UpdateValues(ctx, rng, [][]interface{}{merged.Values(r.Headers)}); err != nil {
		return fmt.Errorf("failed to update %s row %d: %w", r.Tab, r.sheetRowNumber(), err)
	}
	r.Data = merged
	return nil
}

// DeleteRow 행을 시트에서 지운다. 아래 행들은 한 칸씩 올라간다
func (w *Workbook) DeleteRow(ctx context.Context, r *SheetRow) error {
	sheetID, err := w.sheetID(ctx, r.Tab)
	if err != nil {
		return err
	}
	if err := w.wait(ctx); err != nil {
		return err
	}
	// DeleteDimension 은 0 기반, 끝은 exclusive
	start := int64(r.sheetRowNumber() - 1)
	if err := w.backend.DeleteRows(ctx, sheetID, start, start+1); err != nil {
		return fmt.Errorf("failed to delete %s row %d: %w", r.Tab, r.sheetRowNumber(), err)
	}
	return nil
}

func (w *Workbook) sheetID(ctx context.Context, tab string) (int64, error) {
	w.mu.Lock()
	id, ok := w.sheetIDs[tab]
	w.mu.Unlock()
	if ok {
		return id, nil
	}

	if err := w.wait(ctx); err != nil {
		return 0, err
	}
	tabs, err := w.backend.ListTabs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tabs: %w", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range tabs {
		w.sheetIDs[t.Title] = t.SheetID
	}
	id, ok = w.sheetIDs[tab]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	return id, nil
}

// a1 'tab'!cells
func a1(tab, cells string) string {
	quoted := "'" + strings.ReplaceAll(tab, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func cellsToStrings(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c != nil {
			out[i] = fmt.Sprint(c)
		}
	}
	return out
}
