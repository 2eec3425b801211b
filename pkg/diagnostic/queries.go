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

import (
	_ "embed"
	"fmt"
	"path"

	"github.com/blang/semver/v4"
	"gopkg.in/yaml.v3"
)

// Query is one entry of the embedded diagnostic query library. Name
// and Number feed the export file naming scheme and must stay stable.
type Query struct {
	Name             string `yaml:"name"`
	Number           int    `yaml:"number"`
	Description      string `yaml:"description,omitempty"`
	DatabaseSpecific bool   `yaml:"database-specific,omitempty"`
	MinVersion       string `yaml:"min-version,omitempty"`
	SQL              string `yaml:"sql"`
}

//go:embed queries.yaml
var queriesYAML []byte

type queryFile struct {
	Queries []Query `yaml:"queries"`
}

// LoadQueries decodes the embedded query library and validates that
// every query has SQL text and a unique number.
func LoadQueries() ([]Query, error) {
	var qf queryFile
	if err := yaml.Unmarshal(queriesYAML, &qf); err != nil {
		return nil, fmt.Errorf("failed to decode query library: %w", err)
	}
	seen := map[int]string{}
	for _, q := range qf.Queries {
		if q.Name == "" || q.SQL == "" {
			return nil, fmt.Errorf("query %d (%q) is missing a name or SQL text", q.Number, q.Name)
		}
		if prev, ok := seen[q.Number]; ok {
			return nil, fmt.Errorf("query number %d used by both %q and %q", q.Number, prev, q.Name)
		}
		seen[q.Number] = q.Name
		if q.MinVersion != "" {
			if _, err := semver.Parse(q.MinVersion); err != nil {
				return nil, fmt.Errorf("query %q has invalid min-version %q: %w", q.Name, q.MinVersion, err)
			}
		}
	}
	return qf.Queries, nil
}

// FilterQueries returns the queries whose names match the given
// file-globbing style pattern. An empty pattern matches everything.
func FilterQueries(queries []Query, pattern string) (matched []Query) {
	if pattern == "" {
		return queries
	}
	for _, q := range queries {
		if ok, _ := path.Match(pattern, q.Name); ok {
			matched = append(matched, q)
		}
	}
	return
}
