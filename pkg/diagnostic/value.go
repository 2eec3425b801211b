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

// Package diagnostic models the results of SQL Server diagnostic
// queries. Result schemas are not known until run time, so cell values
// are carried in a tagged union and records are ordered name/value
// mappings that can be inspected by column name.
package diagnostic

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	Text
	Number
	Sequence
)

// Value is one cell of a diagnostic result. It can hold nothing, a
// text value, a number or an ordered sequence of text values.
type Value struct {
	kind Kind
	text string
	num  float64
	seq  []string
}

func NullValue() Value {
	return Value{kind: Null}
}

func TextValue(text string) Value {
	return Value{kind: Text, text: text}
}

func NumberValue(num float64) Value {
	return Value{kind: Number, num: num}
}

func SequenceValue(elements ...string) Value {
	return Value{kind: Sequence, seq: elements}
}

// ValueOf converts a raw cell as returned by the database driver into
// a Value. Unknown types are rendered with their default format.
func ValueOf(cell any) Value {
	switch c := cell.(type) {
	case nil:
		return NullValue()
	case string:
		return TextValue(c)
	case []byte:
		return TextValue(string(c))
	case int:
		return NumberValue(float64(c))
	case int32:
		return NumberValue(float64(c))
	case int64:
		return NumberValue(float64(c))
	case float32:
		return NumberValue(float64(c))
	case float64:
		return NumberValue(c)
	case bool:
		if c {
			return TextValue("True")
		}
		return TextValue("False")
	case time.Time:
		return TextValue(c.Format(time.RFC3339))
	default:
		return TextValue(fmt.Sprint(c))
	}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == Null
}

// String renders the value as a single tabular cell.
func (v Value) String() string {
	switch v.kind {
	case Text:
		return v.text
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Sequence:
		return strings.Join(v.seq, "\n")
	default:
		return ""
	}
}

// Strings reinterprets the value as an ordered sequence of text
// values. A scalar becomes a one element sequence, a null an empty
// one.
func (v Value) Strings() []string {
	switch v.kind {
	case Sequence:
		return v.seq
	case Null:
		return nil
	default:
		return []string{v.String()}
	}
}
