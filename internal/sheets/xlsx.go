package sheets

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXFile 구글 시트를 xlsx 로 내려받은 파일. 탭 이름이 같아야 한다
type XLSXFile struct {
	f *excelize.File
}

func OpenXLSX(path string) (*XLSXFile, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	return &XLSXFile{f: f}, nil
}

func (x *XLSXFile) Close() error {
	return x.f.Close()
}

// GetAllRows 첫 행을 헤더로 본다. 탭이 없으면 빈 결과
func (x *XLSXFile) GetAllRows(ctx context.Context, tab string) ([]Row, error) {
	if _, ok := Headers[tab]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}
	if idx, err := x.f.GetSheetIndex(tab); err != nil || idx < 0 {
		return nil, nil
	}

	cells, err := x.f.GetRows(tab)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tab, err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	headers := cells[0]
	rows := make([]Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values := make([]interface{}, len(line))
		for i, v := range line {
			values[i] = v
		}
		rows = append(rows, RowFromValues(headers, values))
	}
	return rows, nil
}

// WriteXLSX 한 탭을 헤더 순서대로 xlsx 로 쓴다. labels 가 있으면 첫 행에 그 이름을 쓴다
func WriteXLSX(w io.Writer, tab string, rows []Row, labels map[string]string) error {
	headers, ok := Headers[tab]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTab, tab)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), tab); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(tab)
	if err != nil {
		return err
	}

	title := make([]interface{}, len(headers))
	for i, h := range headers {
		if label, ok := labels[h]; ok {
			title[i] = label
		} else {
			title[i] = h
		}
	}
	if err := sw.SetRow("A1", title); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row.Values(headers)); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}
