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

import "slices"

// Record is an ordered mapping from column name to Value. The column
// set is discovered at run time, one record per result row.
type Record struct {
	names  []string
	values map[string]Value
}

// NewRecord returns an empty Record ready for Set calls.
func NewRecord() Record {
	return Record{values: map[string]Value{}}
}

// Set adds or replaces a named value. Insertion order of new names is
// preserved for Fields.
func (r *Record) Set(name string, value Value) {
	if r.values == nil {
		r.values = map[string]Value{}
	}
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = value
}

// Fields returns the column names in insertion order.
func (r Record) Fields() []string {
	return slices.Clone(r.names)
}

func (r Record) Len() int {
	return len(r.names)
}

func (r Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Remove returns a copy of the record without the named column, plus
// the removed value. If the column is not present the original record
// is returned unchanged and ok is false.
func (r Record) Remove(name string) (residual Record, value Value, ok bool) {
	value, ok = r.values[name]
	if !ok {
		return r, Value{}, false
	}
	residual = Record{
		names:  make([]string, 0, len(r.names)-1),
		values: make(map[string]Value, len(r.names)-1),
	}
	for _, n := range r.names {
		if n == name {
			continue
		}
		residual.names = append(residual.names, n)
		residual.values[n] = r.values[n]
	}
	return residual, value, true
}
