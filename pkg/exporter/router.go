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
	"os"

	"github.com/rs/zerolog/log"
)

// ArtifactKind selects the file extension for extracted special
// column values.
type ArtifactKind int

const (
	PlanArtifact ArtifactKind = iota
	QueryTextArtifact
)

func (k ArtifactKind) Ext() string {
	if k == PlanArtifact {
		return "sqlplan"
	}
	return "sql"
}

func (k ArtifactKind) String() string {
	if k == PlanArtifact {
		return "query plan"
	}
	return "query text"
}

// routeArtifacts writes each extracted value to its own file, one per
// element, 1-indexed, fully replacing any previous file at the same
// path. When suppressed nothing is written.
func routeArtifacts(target Target, kind ArtifactKind, values []string, suppressed bool) error {
	if suppressed || len(values) == 0 {
		return nil
	}
	for i, value := range values {
		path := target.Artifact(i+1, kind.Ext())
		log.Info().Msgf("exporting %s to %s", kind, path)
		if err := os.WriteFile(path, []byte(value), 0664); err != nil {
			return fmt.Errorf("cannot write %s %s: %w", kind, path, err)
		}
	}
	return nil
}
