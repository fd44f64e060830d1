package sheets

import (
	"context"
	"fmt"

	"github.com/ikkim/sangjo-partner-backend/config"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// googleBackend Sheets API v4 구현
type googleBackend struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewWorkbook 서비스 계정(이메일 + 개인키)으로 스프레드시트에 연결한다
func NewWorkbook(ctx context.Context, cfg config.SheetsConfig) (*Workbook, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	jwtCfg := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheets.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	// 토큰 갱신은 요청 ctx 와 무관하게 살아 있어야 한다
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(context.Background())))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	backend := &googleBackend{srv: srv, spreadsheetID: cfg.SpreadsheetID}
	return NewWorkbookWithBackend(backend, cfg.RequestsPerSecond), nil
}

func (g *googleBackend) ListTabs(ctx context.Context) ([]TabInfo, error) {
	resp, err := g.srv.Spreadsheets.Get(g.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, Classify(err)
	}
	tabs := make([]TabInfo, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		tabs = append(tabs, TabInfo{Title: s.Properties.Title, SheetID: s.Properties.SheetId})
	}
	return tabs, nil
}

func (g *googleBackend) AddTab(ctx context.Context, title string) (int64, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	resp, err := g.srv.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, Classify(err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add sheet %s: empty reply", title)
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (g *googleBackend) GetValues(ctx context.Context, rangeA1 string) ([][]interface{}, error) {
	resp, err := g.srv.Spreadsheets.Values.Get(g.spreadsheetID, rangeA1).Context(ctx).Do()
	if err != nil {
		return nil, Classify(err)
	}
	return resp.Values, nil
}

func (g *googleBackend) UpdateValues(ctx context.Context, rangeA1 string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.Update(g.spreadsheetID, rangeA1, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return Classify(err)
}

func (g *googleBackend) AppendValues(ctx context.Context, rangeA1 string, values [][]interface{}) error {
	_, err := g.srv.Spreadsheets.Values.Append(g.spreadsheetID, rangeA1, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return Classify(err)
}

func (g *googleBackend) DeleteRows(ctx context.Context, sheetID int64, startIndex, endIndex int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:         sheetID,
					Dimension:       "ROWS",
					StartIndex:      startIndex,
					EndIndex:        endIndex,
					ForceSendFields: []string{"SheetId"}, // 첫 탭은 sheetId 가 0
				},
			},
		}},
	}
	_, err := g.srv.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return Classify(err)
}
