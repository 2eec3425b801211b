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

import "strings"

// reserved is the set of characters invalid in a Windows path
// component, the strictest of the supported platforms. Using it
// everywhere keeps generated names portable.
const reserved = `<>:"/\|?*`

// Sanitize maps an arbitrary display label to a filesystem-safe path
// component. Spaces become hyphens, reserved and control characters
// are dropped, everything else keeps its relative order. Total and
// idempotent.
func Sanitize(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r == ' ':
			b.WriteRune('-')
		case r < 0x20 || strings.ContainsRune(reserved, r):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NeutralizeInstance replaces path separators in a server instance
// name, e.g. HOST\INSTANCE, so the value is safe inside a filename.
func NeutralizeInstance(instance string) string {
	instance = strings.ReplaceAll(instance, `\`, "$")
	return strings.ReplaceAll(instance, "/", "$")
}
