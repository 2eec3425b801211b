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
	"path/filepath"

	"github.com/yoke88/dbatools/pkg/diagnostic"
)

// Target computes the destination paths for one diagnostic result row.
// Two template families exist, selected by DatabaseSpecific: per
// database names carry a database segment, instance level ones do not.
// All names share the sanitized query name, the query number and a
// caller supplied suffix to avoid collisions across repeated runs.
type Target struct {
	Dir              string
	Instance         string
	Database         string
	Name             string
	Number           int
	DatabaseSpecific bool
	Suffix           string
}

// NewTarget derives the Target for a row, neutralizing path separators
// in the instance name and sanitizing the query name.
func NewTarget(dir, suffix string, row diagnostic.Row) Target {
	return Target{
		Dir:              dir,
		Instance:         NeutralizeInstance(row.SQLInstance),
		Database:         row.DatabaseName,
		Name:             Sanitize(row.Name),
		Number:           row.Number,
		DatabaseSpecific: row.DatabaseSpecific,
		Suffix:           suffix,
	}
}

// Artifact returns the path for the index-th (1-based) extracted
// element of a special column, e.g. a query plan or full query text.
func (t Target) Artifact(index int, ext string) string {
	if t.DatabaseSpecific {
		return filepath.Join(t.Dir,
			fmt.Sprintf("%s-%s-DQ-%d-%s-%d-%s.%s", t.Instance, t.Database, t.Number, t.Name, index, t.Suffix, ext))
	}
	return filepath.Join(t.Dir,
		fmt.Sprintf("%s-DQ-%d-%s-%d-%s.%s", t.Instance, t.Number, t.Name, index, t.Suffix, ext))
}

// Tabular returns the path for the residual tabular payload.
func (t Target) Tabular(ext string) string {
	if t.DatabaseSpecific {
		return filepath.Join(t.Dir,
			fmt.Sprintf("%s-%s-DQ-%d-%s-%s.%s", t.Instance, t.Database, t.Number, t.Name, t.Suffix, ext))
	}
	return filepath.Join(t.Dir,
		fmt.Sprintf("%s-DQ-%d-%s-%s.%s", t.Instance, t.Number, t.Name, t.Suffix, ext))
}
