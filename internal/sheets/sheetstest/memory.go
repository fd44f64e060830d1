// Package sheetstest provides an in-memory sheets.Backend for tests.
package sheetstest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
)

// Memory 탭별 2차원 셀 배열. A1 표기는 'tab', 'tab'!A<n>, 'tab'!1:1 만 지원한다
type Memory struct {
	mu     sync.Mutex
	order  []string
	tabs   map[string][][]interface{}
	ids    map[string]int64
	nextID int64

	// Err 가 설정되면 모든 호출이 이 에러를 돌려준다
	Err error
	// Calls 호출 횟수 (메서드 이름별)
	Calls map[string]int
	// Before 가 설정되면 매 호출 전에 불린다. 에러를 돌려주면 그 호출만 실패한다
	Before func(method string, n int) error
}

func NewMemory() *Memory {
	return &Memory{
		tabs:  make(map[string][][]interface{}),
		ids:   make(map[string]int64),
		Calls: make(map[string]int),
	}
}

// Rows 헤더 포함 탭 내용을 문자열로 돌려준다
func (m *Memory) Rows(tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]string
	for _, row := range m.tabs[tab] {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = fmt.Sprint(c)
		}
		out = append(out, cells)
	}
	return out
}

// SetRows 탭 내용을 통째로 바꾼다 (탭이 없으면 만든다)
func (m *Memory) SetRows(tab string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(tab)
	values := make([][]interface{}, len(rows))
	for i, r := range rows {
		values[i] = make([]interface{}, len(r))
		for j, c := range r {
			values[i][j] = c
		}
	}
	m.tabs[tab] = values
}

func (m *Memory) ensure(tab string) int64 {
	if id, ok := m.ids[tab]; ok {
		return id
	}
	id := m.nextID
	m.nextID++
	m.ids[tab] = id
	m.order = append(m.order, tab)
	m.tabs[tab] = nil
	return id
}

func (m *Memory) call(name string) error {
	m.Calls[name]++
	if m.Before != nil {
		if err := m.Before(name, m.Calls[name]); err != nil {
			return err
		}
	}
	return m.Err
}

func (m *Memory) ListTabs(ctx context.Context) ([]sheets.TabInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("ListTabs"); err != nil {
		return nil, err
	}
	out := make([]sheets.TabInfo, 0, len(m.order))
	for _, t := range m.order {
		out = append(out, sheets.TabInfo{Title: t, SheetID: m.ids[t]})
	}
	return out, nil
}

func (m *Memory) AddTab(ctx context.Context, title string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("AddTab"); err != nil {
		return 0, err
	}
	if _, ok := m.ids[title]; ok {
		return 0, fmt.Errorf("tab %s already exists", title)
	}
	return m.ensure(title), nil
}

func (m *Memory) GetValues(ctx context.Context, rangeA1 string) ([][]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("GetValues"); err != nil {
		return nil, err
	}
	tab, cells, err := parseRange(rangeA1)
	if err != nil {
		return nil, err
	}
	rows, ok := m.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("unable to parse range: %s", rangeA1)
	}
	if cells == "1:1" {
		if len(rows) == 0 {
			return nil, nil
		}
		return [][]interface{}{copyRow(rows[0])}, nil
	}
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = copyRow(r)
	}
	return out, nil
}

func (m *Memory) UpdateValues(ctx context.Context, rangeA1 string, values [][]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("UpdateValues"); err != nil {
		return err
	}
	tab, cells, err := parseRange(rangeA1)
	if err != nil {
		return err
	}
	if _, ok := m.tabs[tab]; !ok {
		return fmt.Errorf("unable to parse range: %s", rangeA1)
	}
	start, err := rowNumber(cells)
	if err != nil {
		return err
	}
	for i, v := range values {
		idx := start - 1 + i
		for len(m.tabs[tab]) <= idx {
			m.tabs[tab] = append(m.tabs[tab], nil)
		}
		m.tabs[tab][idx] = copyRow(v)
	}
	return nil
}

func (m *Memory) AppendValues(ctx context.Context, rangeA1 string, values [][]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("AppendValues"); err != nil {
		return err
	}
	tab, _, err := parseRange(rangeA1)
	if err != nil {
		return err
	}
	if _, ok := m.tabs[tab]; !ok {
		return fmt.Errorf("unable to parse range: %s", rangeA1)
	}
	for _, v := range values {
		m.tabs[tab] = append(m.tabs[tab], copyRow(v))
	}
	return nil
}

func (m *Memory) DeleteRows(ctx context.Context, sheetID int64, startIndex, endIndex int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call("DeleteRows"); err != nil {
		return err
	}
	for tab, id := range m.ids {
		if id != sheetID {
			continue
		}
		rows := m.tabs[tab]
		if startIndex < 0 || endIndex > int64(len(rows)) || startIndex >= endIndex {
			return fmt.Errorf("invalid delete range %d:%d", startIndex, endIndex)
		}
		m.tabs[tab] = append(rows[:startIndex], rows[endIndex:]...)
		return nil
	}
	return fmt.Errorf("no sheet with id %d", sheetID)
}

func parseRange(rangeA1 string) (tab, cells string, err error) {
	if !strings.HasPrefix(rangeA1, "'") {
		return "", "", fmt.Errorf("unquoted range %q", rangeA1)
	}
	end := strings.LastIndex(rangeA1, "'")
	if end == 0 {
		return "", "", fmt.Errorf("bad range %q", rangeA1)
	}
	tab = strings.ReplaceAll(rangeA1[1:end], "''", "'")
	rest := rangeA1[end+1:]
	if rest != "" {
		cells = strings.TrimPrefix(rest, "!")
	}
	return tab, cells, nil
}

// rowNumber "A7" -> 7
func rowNumber(cells string) (int, error) {
	digits := strings.TrimLeft(cells, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("unsupported cell reference %q", cells)
	}
	return n, nil
}

func copyRow(r []interface{}) []interface{} {
	return append([]interface{}(nil), r...)
}
