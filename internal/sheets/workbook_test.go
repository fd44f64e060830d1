package sheets_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ikkim/sangjo-partner-backend/config"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets"
	"github.com/ikkim/sangjo-partner-backend/internal/sheets/sheetstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func newWorkbook(t *testing.T) (*sheets.Workbook, *sheetstest.Memory) {
	t.Helper()
	mem := sheetstest.NewMemory()
	wb := sheets.NewWorkbookWithBackend(mem, 1000)
	require.NoError(t, wb.EnsureTabs(context.Background()))
	return wb, mem
}

func TestEnsureTabs_CreatesAllTabsWithHeaders(t *testing.T) {
	wb, mem := newWorkbook(t)

	for _, tab := range sheets.Tabs {
		rows := mem.Rows(tab)
		require.Len(t, rows, 1, tab)
		assert.Equal(t, sheets.Headers[tab], rows[0], tab)
	}

	// 두 번째 실행은 아무것도 만들지 않는다
	added := mem.Calls["AddTab"]
	require.NoError(t, wb.EnsureTabs(context.Background()))
	assert.Equal(t, added, mem.Calls["AddTab"])
}

func TestEnsureTabs_ExtendsShortHeaderRow(t *testing.T) {
	mem := sheetstest.NewMemory()
	mem.SetRows(sheets.TabStatusHistory, [][]string{
		{"history_id", "application_no"},
		{"H-1", "SA-20260101-0001"},
	})

	wb := sheets.NewWorkbookWithBackend(mem, 1000)
	require.NoError(t, wb.EnsureTabs(context.Background()))

	rows := mem.Rows(sheets.TabStatusHistory)
	assert.Equal(t, sheets.Headers[sheets.TabStatusHistory], rows[0])
	assert.Equal(t, "H-1", rows[1][0])
}

func TestWorkbook_RowCRUD(t *testing.T) {
	wb, mem := newWorkbook(t)
	ctx := context.Background()

	require.NoError(t, wb.AppendRow(ctx, sheets.TabPartners, sheets.Row{"partner_id": "P-1", "company_name": "가몰"}))
	require.NoError(t, wb.AppendRow(ctx, sheets.TabPartners, sheets.Row{"partner_id": "P-2", "company_name": "나몰"}))

	rows, err := wb.GetAllRows(ctx, sheets.TabPartners)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "나몰", rows[1].Get("company_name"))
	assert.Equal(t, "", rows[1].Get("logo_url"))

	found, err := wb.FindRow(ctx, sheets.TabPartners, func(r sheets.Row) bool { return r.Get("partner_id") == "P-2" })
	require.NoError(t, err)
	require.NotNil(t, found)

	require.NoError(t, wb.MutateRow(ctx, found, sheets.Row{"status": "inactive"}))
	rows, err = wb.GetAllRows(ctx, sheets.TabPartners)
	require.NoError(t, err)
	assert.Equal(t, "inactive", rows[1].Get("status"))
	assert.Equal(t, "나몰", rows[1].Get("company_name"))

	first, err := wb.FindRow(ctx, sheets.TabPartners, func(r sheets.Row) bool { return r.Get("partner_id") == "P-1" })
	require.NoError(t, err)
	require.NoError(t, wb.DeleteRow(ctx, first))

	raw := mem.Rows(sheets.TabPartners)
	require.Len(t, raw, 2)
	assert.Equal(t, "P-2", raw[1][0])

	missing, err := wb.FindRow(ctx, sheets.TabPartners, func(r sheets.Row) bool { return r.Get("partner_id") == "P-9" })
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestWorkbook_UnknownTab(t *testing.T) {
	wb, _ := newWorkbook(t)

	_, err := wb.GetAllRows(context.Background(), "nope")
	assert.ErrorIs(t, err, sheets.ErrUnknownTab)

	err = wb.AppendRow(context.Background(), "nope", sheets.Row{})
	assert.ErrorIs(t, err, sheets.ErrUnknownTab)
}

func TestWorkbook_BackendErrorPropagates(t *testing.T) {
	wb, mem := newWorkbook(t)
	mem.Err = errors.New("boom")

	_, err := wb.GetAllRows(context.Background(), sheets.TabApplications)
	assert.Error(t, err)
}

func TestWorkbook_ContextCancelled(t *testing.T) {
	mem := sheetstest.NewMemory()
	wb := sheets.NewWorkbookWithBackend(mem, 0.001)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wb.GetAllRows(ctx, sheets.TabPartners)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewWorkbook_NotConfigured(t *testing.T) {
	_, err := sheets.NewWorkbook(context.Background(), config.SheetsConfig{})
	assert.ErrorIs(t, err, sheets.ErrNotConfigured)
}

func TestClassify(t *testing.T) {
	forbidden := &googleapi.Error{Code: http.StatusForbidden, Message: "The caller does not have permission"}
	assert.ErrorIs(t, sheets.Classify(forbidden), sheets.ErrPermissionDenied)

	notFound := &googleapi.Error{Code: http.StatusNotFound}
	assert.ErrorIs(t, sheets.Classify(notFound), sheets.ErrSpreadsheetNotFound)

	other := errors.New("timeout")
	assert.Equal(t, other, sheets.Classify(other))
	assert.NoError(t, sheets.Classify(nil))
}
