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

// Package exporter turns diagnostic query results into files. Each
// result row is split three ways: query plans to .sqlplan files, full
// query text to .sql files and the remaining tabular payload to a CSV
// file or an XLSX workbook sheet. Tabular output accumulates across
// invocations sharing a suffix, file artifacts are always replaced.
package exporter

import (
	"fmt"

	"github.com/yoke88/dbatools/pkg/diagnostic"
)

// TabularBackend writes the residual tabular payload of one row to a
// target file. Probe is called once before any row is processed and
// must fail if the backend cannot work at all.
type TabularBackend interface {
	Probe() error
	Ext() string
	WriteTable(path string, row diagnostic.Row, records []diagnostic.Record) error
}

// NewBackend returns the tabular backend for the named format, one of
// "csv" or "xlsx" (alias "excel"). Options are backend specific.
func NewBackend(format string, options ...any) (b TabularBackend, err error) {
	switch format {
	case "csv":
		b = newCSVBackend()
	case "xlsx", "excel":
		var xlsxoptions []XLSXBackendOptions
		for _, o := range options {
			if x, ok := o.(XLSXBackendOptions); ok {
				xlsxoptions = append(xlsxoptions, x)
			} else {
				panic("wrong option type")
			}
		}
		b = newXLSXBackend(xlsxoptions...)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	return
}

// tableColumns returns the union of column names across all records,
// in first-seen order.
func tableColumns(records []diagnostic.Record) (columns []string) {
	seen := map[string]bool{}
	for _, rec := range records {
		for _, name := range rec.Fields() {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	return
}

// tableCells renders one record against a fixed column order, empty
// strings for columns the record does not carry.
func tableCells(rec diagnostic.Record, columns []string) (cells []string) {
	cells = make([]string, len(columns))
	for i, name := range columns {
		if v, ok := rec.Get(name); ok {
			cells[i] = v.String()
		}
	}
	return
}
