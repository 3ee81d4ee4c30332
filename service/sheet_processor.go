package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/agencyval/commission-recon/dto"
)

type SheetProcessor interface {
	ReadGrid(filename string, data []byte) ([][]string, error)
}

type sheetProcessor struct{}

func NewSheetProcessor() SheetProcessor {
	return &sheetProcessor{}
}

// ReadGrid loads a ruled spreadsheet-like document into a single cell
// grid. Workbook sheets are concatenated in order.
func (s *sheetProcessor) ReadGrid(filename string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		r := csv.NewReader(bytes.NewReader(data))
		r.FieldsPerRecord = -1
		rows, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("unreadable csv: %w", err)
		}
		return rows, nil
	case ".xlsx", ".xlsm", ".xls":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unreadable workbook: %w", err)
		}
		defer f.Close()

		var grid [][]string
		for _, sheet := range f.GetSheetList() {
			rows, err := f.GetRows(sheet)
			if err != nil {
				continue
			}
			grid = append(grid, rows...)
		}
		if len(grid) == 0 {
			return nil, dto.ErrEmptyDocument
		}
		return grid, nil
	default:
		return nil, dto.ErrUnsupportedFormat
	}
}
