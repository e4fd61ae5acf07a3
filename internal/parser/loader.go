package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"sheetnorm/pkg/contracts/domain"
)

// workbook is the loader seam between the two decoder backends. Grids
// are decoded once per sheet and cached, so sections that share a sheet
// read the same immutable grid.
type workbook interface {
	Grid(sheet string) (*domain.Grid, error)
	Close() error
}

// openWorkbook picks the decoder by extension: the OOXML reader for
// .xlsx/.xlsm, the legacy BIFF reader for .xls.
func openWorkbook(path string) (workbook, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return openXLS(path)
	}
	return openXLSX(path)
}

type xlsxBook struct {
	f     *excelize.File
	grids map[string]*domain.Grid
}

func openXLSX(path string) (*xlsxBook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &xlsxBook{f: f, grids: make(map[string]*domain.Grid)}, nil
}

func (b *xlsxBook) Grid(sheet string) (*domain.Grid, error) {
	name := sheet
	if name == "" {
		name = b.f.GetSheetName(0)
	}
	if g, ok := b.grids[name]; ok {
		return g, nil
	}
	// Raw values, not rendered ones: a stored numeric with a currency
	// number format must classify as a number, while text-stored "£500"
	// keeps its literal content either way.
	rows, err := b.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", name, err)
	}
	g := domain.NewGridFromStrings(rows)
	b.grids[name] = g
	return g, nil
}

func (b *xlsxBook) Close() error { return b.f.Close() }

type xlsBook struct {
	wb    xls.Workbook
	grids map[string]*domain.Grid
}

func openXLS(path string) (*xlsBook, error) {
	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return &xlsBook{wb: wb, grids: make(map[string]*domain.Grid)}, nil
}

func (b *xlsBook) Grid(sheetName string) (*domain.Grid, error) {
	key := sheetName
	if g, ok := b.grids[key]; ok {
		return g, nil
	}

	index := 0
	if sheetName != "" {
		index = -1
		for i := 0; i < b.wb.GetNumberSheets(); i++ {
			s, err := b.wb.GetSheet(i)
			if err != nil {
				continue
			}
			if s.GetName() == sheetName {
				index = i
				break
			}
		}
		if index < 0 {
			return nil, fmt.Errorf("sheet %q not found", sheetName)
		}
	}

	s, err := b.wb.GetSheet(index)
	if err != nil {
		return nil, fmt.Errorf("sheet %d: %w", index, err)
	}

	var rows [][]string
	for _, r := range s.GetRows() {
		var cells []string
		for _, c := range r.GetCols() {
			cells = append(cells, c.GetString())
		}
		rows = append(rows, cells)
	}

	g := domain.NewGridFromStrings(rows)
	b.grids[key] = g
	return g, nil
}

// Close is a no-op: the legacy reader decodes the whole file up front.
func (b *xlsBook) Close() error { return nil }
