// Package rowsource reads manifest spreadsheets into raw contact rows.
package rowsource

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmehdipour/contact-gateway/internal/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// HeaderRow is the 0-based index of the header row; manifests carry two
	// title rows above it.
	HeaderRow = 2

	ColumnNames = "names"
	ColumnPhone = "phone"
	ColumnRoom  = "room"
)

// ParseError reports a workbook that cannot be turned into rows.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse manifest: %s: %v", e.Reason, e.Err)
	}
	return "parse manifest: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

type ExcelSource struct {
	log *zap.Logger
}

func NewExcelSource(log *zap.Logger) *ExcelSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExcelSource{log: log}
}

// Read loads the first sheet of the workbook in r. Blank Names/Phone cells
// take the value of the row above; rows before the first value in either
// column and fully blank rows are dropped.
func (s *ExcelSource) Read(r io.Reader) ([]model.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Reason: "open workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Reason: "read sheet " + sheet, Err: err}
	}
	if len(rows) <= HeaderRow {
		return nil, &ParseError{Reason: fmt.Sprintf("expected header on row %d", HeaderRow+1)}
	}

	cols := headerIndex(rows[HeaderRow])
	nameIdx, okName := cols[ColumnNames]
	phoneIdx, okPhone := cols[ColumnPhone]
	if !okName || !okPhone {
		return nil, &ParseError{Reason: "missing Names or Phone column"}
	}
	roomIdx, hasRoom := cols[ColumnRoom]

	out := make([]model.RawRow, 0, len(rows)-HeaderRow-1)
	var lastName, lastPhone string
	dropped := 0

	for _, row := range rows[HeaderRow+1:] {
		if blank(row) {
			dropped++
			continue
		}

		name := cell(row, nameIdx)
		phone := cell(row, phoneIdx)
		if name == "" {
			name = lastName
		}
		if phone == "" {
			phone = lastPhone
		}
		lastName, lastPhone = name, phone

		if name == "" || phone == "" {
			dropped++
			continue
		}

		rr := model.RawRow{Name: name, Phone: phone}
		if hasRoom {
			rr.Room = cell(row, roomIdx)
		}
		out = append(out, rr)
	}

	s.log.Info("manifest rows loaded",
		zap.String("sheet", sheet),
		zap.Int("rows", len(out)),
		zap.Int("dropped", dropped),
		zap.Bool("room_column", hasRoom),
	)

	return out, nil
}

// headerIndex maps lowercased, trimmed header titles to column indexes. The
// first occurrence of a title wins.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
