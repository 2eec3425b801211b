/*
Copyright © 2025 yoke88

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.

You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package exporter

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/yoke88/dbatools/pkg/diagnostic"
)

// SheetCollision selects what happens when a batch writes two rows
// with the same query name into one workbook.
const (
	SheetReplace = "replace"
	SheetUnique  = "unique"
)

type xlsxBackend struct {
	sheetCollision string
	minColWidth    float64
	maxColWidth    float64
}

// ensure that *xlsxBackend conforms to the TabularBackend interface
var _ TabularBackend = (*xlsxBackend)(nil)

type XLSXBackendOptions func(*xlsxBackendOptions)

type xlsxBackendOptions struct {
	sheetCollision string
	minColWidth    float64
	maxColWidth    float64
}

func evalXLSXBackendOptions(options ...XLSXBackendOptions) (xo *xlsxBackendOptions) {
	xo = &xlsxBackendOptions{
		sheetCollision: SheetReplace,
		minColWidth:    10.0,
		maxColWidth:    60.0,
	}
	for _, opt := range options {
		opt(xo)
	}
	return
}

func OnSheetCollision(policy string) XLSXBackendOptions {
	return func(xo *xlsxBackendOptions) {
		xo.sheetCollision = policy
	}
}

func MinColumnWidth(n float64) XLSXBackendOptions {
	return func(xo *xlsxBackendOptions) {
		xo.minColWidth = n
	}
}

func MaxColumnWidth(n float64) XLSXBackendOptions {
	return func(xo *xlsxBackendOptions) {
		xo.maxColWidth = n
	}
}

func newXLSXBackend(options ...XLSXBackendOptions) *xlsxBackend {
	opts := evalXLSXBackendOptions(options...)
	return &xlsxBackend{
		sheetCollision: opts.sheetCollision,
		minColWidth:    opts.minColWidth,
		maxColWidth:    opts.maxColWidth,
	}
}

// Probe writes an empty workbook to io.Discard so a broken backend is
// caught before any row is processed.
func (x *xlsxBackend) Probe() error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.Write(io.Discard); err != nil {
		return fmt.Errorf("xlsx backend unavailable: %w", err)
	}
	return nil
}

func (x *xlsxBackend) Ext() string {
	return "xlsx"
}

// WriteTable writes the records to a sheet named after the row's query
// inside the target workbook. An existing workbook is opened and
// extended rather than truncated; the named sheet is replaced or
// uniquified according to the collision policy.
func (x *xlsxBackend) WriteTable(path string, row diagnostic.Row, records []diagnostic.Record) error {
	var f *excelize.File
	var err error

	if _, serr := os.Stat(path); serr == nil {
		if f, err = excelize.OpenFile(path); err != nil {
			return fmt.Errorf("cannot open workbook %s: %w", path, err)
		}
	} else {
		f = excelize.NewFile()
	}
	defer f.Close()

	sheet, err := x.prepareSheet(f, row)
	if err != nil {
		return fmt.Errorf("workbook %s: %w", path, err)
	}

	columns := tableColumns(records)
	if err = x.writeSheet(f, sheet, columns, records); err != nil {
		return fmt.Errorf("workbook %s: %w", path, err)
	}

	if err = f.SaveAs(path); err != nil {
		return fmt.Errorf("cannot write workbook %s: %w", path, err)
	}
	return nil
}

// prepareSheet resolves the sheet name for a row, truncating to the
// 31 character sheet name limit and applying the collision policy,
// then creates the sheet. A brand new workbook's default sheet is
// renamed instead.
func (x *xlsxBackend) prepareSheet(f *excelize.File, row diagnostic.Row) (sheet string, err error) {
	sheet = sheetName(row.Name)

	if idx, _ := f.GetSheetIndex(sheet); idx != -1 {
		switch x.sheetCollision {
		case SheetUnique:
			base := sheet
			for n := 2; ; n++ {
				suffix := fmt.Sprintf("-%d", n)
				if len(base)+len(suffix) > 31 {
					base = base[:31-len(suffix)]
				}
				sheet = base + suffix
				if idx, _ := f.GetSheetIndex(sheet); idx == -1 {
					break
				}
			}
		default:
			log.Debug().Msgf("replacing existing sheet %q", sheet)
			if err = f.DeleteSheet(sheet); err != nil {
				return
			}
		}
	}

	// a fresh workbook has one empty default sheet, reuse it
	if sheets := f.GetSheetList(); len(sheets) == 1 && sheets[0] == "Sheet1" && sheet != "Sheet1" {
		err = f.SetSheetName("Sheet1", sheet)
		return
	}
	_, err = f.NewSheet(sheet)
	return
}

func sheetName(name string) string {
	if len(name) > 31 {
		log.Debug().Msgf("query name %q exceeds sheet name limit of 31 chars, truncating", name)
		name = name[:31]
	}
	return name
}

func (x *xlsxBackend) writeSheet(f *excelize.File, sheet string, columns []string, records []diagnostic.Record) (err error) {
	heading, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"cccccc"},
			Pattern: 1,
		},
		Font: &excelize.Font{
			Bold: true,
		},
	})
	if err != nil {
		return
	}

	header := make([]any, len(columns))
	widths := make([]float64, len(columns))
	for i, c := range columns {
		header[i] = c
		widths[i] = limitWidth(len(c), x.minColWidth, x.maxColWidth)
	}
	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		return
	}

	for rownum, rec := range records {
		cells := recordCells(rec, columns)
		if err = f.SetSheetRow(sheet, fmt.Sprintf("A%d", 2+rownum), &cells); err != nil {
			return
		}
		for i, cell := range cells {
			widths[i] = limitWidth(len(fmt.Sprint(cell)), widths[i], x.maxColWidth)
		}
	}

	for i, w := range widths {
		col, cerr := excelize.ColumnNumberToName(i + 1)
		if cerr != nil {
			return cerr
		}
		if err = f.SetColWidth(sheet, col, col, w); err != nil {
			return
		}
	}

	if err = f.SetRowStyle(sheet, 1, 1, heading); err != nil {
		return
	}

	if len(columns) > 0 {
		lastcol, cerr := excelize.ColumnNumberToName(len(columns))
		if cerr != nil {
			return cerr
		}
		if err = f.AutoFilter(sheet, fmt.Sprintf("A1:%s1", lastcol), nil); err != nil {
			return
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
		Selection: []excelize.Selection{
			{SQRef: "A2", ActiveCell: "A2", Pane: "bottomLeft"},
		},
	})
}

// recordCells renders a record as typed cells so numbers stay numbers
// in the workbook.
func recordCells(rec diagnostic.Record, columns []string) (cells []any) {
	cells = make([]any, len(columns))
	for i, name := range columns {
		v, ok := rec.Get(name)
		if !ok || v.IsNull() {
			cells[i] = ""
			continue
		}
		if v.Kind() == diagnostic.Number {
			var f float64
			fmt.Sscan(v.String(), &f)
			cells[i] = f
			continue
		}
		cells[i] = v.String()
	}
	return
}

// a scale factor for the column width versus string len
const colScale = 1.25

func limitWidth(chars int, minWidth, maxWidth float64) float64 {
	w := colScale * float64(chars)
	if w > 255 {
		return 255
	}
	w = max(min(w, maxWidth), minWidth)
	return w
}
