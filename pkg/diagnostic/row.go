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

package diagnostic

// Reserved column names whose values are extracted to individual files
// rather than kept inline in tabular output.
const (
	QueryPlanColumn = "Query Plan"
	QueryTextColumn = "Complete Query Text"
)

// Row is one named diagnostic query's output for one server or
// database context.
type Row struct {
	Name             string
	Number           int
	SQLInstance      string
	DatabaseName     string
	DatabaseSpecific bool
	Result           []Record
}

// ExtractColumn removes the named column from every record in a result
// payload, collecting the removed values in record order, each
// reinterpreted as an ordered sequence of text values. Records without
// the column pass through untouched. When no record carries the column
// the input payload is returned as-is and found is false.
func ExtractColumn(records []Record, column string) (residual []Record, values []string, found bool) {
	for _, rec := range records {
		if rec.Has(column) {
			found = true
			break
		}
	}
	if !found {
		return records, nil, false
	}

	residual = make([]Record, 0, len(records))
	for _, rec := range records {
		rest, value, ok := rec.Remove(column)
		residual = append(residual, rest)
		if ok {
			values = append(values, value.Strings()...)
		}
	}
	return residual, values, true
}
