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
	"encoding/csv"
	"fmt"
	"os"

	"github.com/yoke88/dbatools/pkg/diagnostic"
)

type csvBackend struct{}

// ensure that *csvBackend conforms to the TabularBackend interface
var _ TabularBackend = (*csvBackend)(nil)

func newCSVBackend() *csvBackend {
	return &csvBackend{}
}

func (c *csvBackend) Probe() error {
	return nil
}

func (c *csvBackend) Ext() string {
	return "csv"
}

// WriteTable appends the records to the target file. The header row is
// only written when the file is created; repeated exports to the same
// path accumulate rows under a single header.
func (c *csvBackend) WriteTable(path string, row diagnostic.Row, records []diagnostic.Record) error {
	_, err := os.Stat(path)
	created := os.IsNotExist(err)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	columns := tableColumns(records)
	w := csv.NewWriter(f)
	if created {
		if err = w.Write(columns); err != nil {
			return fmt.Errorf("cannot write %s: %w", path, err)
		}
	}
	for _, rec := range records {
		if err = w.Write(tableCells(rec, columns)); err != nil {
			return fmt.Errorf("cannot write %s: %w", path, err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}
