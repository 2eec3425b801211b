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
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/yoke88/dbatools/pkg/diagnostic"
)

// Exporter drives the per-row export pipeline: extract special
// columns, route their values to artifact files, then hand the
// residual tabular payload to the format backend. Rows are processed
// strictly in arrival order; a failing row is recorded and the batch
// continues.
type Exporter struct {
	dir         string
	suffix      string
	backend     TabularBackend
	noPlans     bool
	noQueryText bool
	raiseErrors bool
	bar         *progressbar.ProgressBar
}

// ErrRowsFailed is returned by Export when one or more rows failed and
// error raising is not enabled; details have already been logged.
var ErrRowsFailed = errors.New("some rows failed to export")

type Options func(*exporterOptions)

type exporterOptions struct {
	suffix      string
	noPlans     bool
	noQueryText bool
	raiseErrors bool
	progress    bool
	backend     []any
}

func evalExporterOptions(options ...Options) (eo *exporterOptions) {
	eo = &exporterOptions{
		// millisecond precision keeps repeated runs apart
		suffix: strings.ReplaceAll(time.Now().Format("20060102150405.000"), ".", ""),
	}
	for _, opt := range options {
		opt(eo)
	}
	return
}

// Suffix overrides the timestamp token appended to every generated
// filename.
func Suffix(suffix string) Options {
	return func(eo *exporterOptions) {
		if suffix != "" {
			eo.suffix = suffix
		}
	}
}

// SuppressPlans extracts "Query Plan" columns without writing .sqlplan
// files.
func SuppressPlans(suppress bool) Options {
	return func(eo *exporterOptions) {
		eo.noPlans = suppress
	}
}

// SuppressQueryText extracts "Complete Query Text" columns without
// writing .sql files.
func SuppressQueryText(suppress bool) Options {
	return func(eo *exporterOptions) {
		eo.noQueryText = suppress
	}
}

// RaiseErrors returns the collected per-row failures from Export
// instead of only logging them.
func RaiseErrors(raise bool) Options {
	return func(eo *exporterOptions) {
		eo.raiseErrors = raise
	}
}

// Progress enables a terminal progress bar while exporting.
func Progress(enable bool) Options {
	return func(eo *exporterOptions) {
		eo.progress = enable
	}
}

// BackendOptions passes format specific options through to the
// tabular backend.
func BackendOptions(options ...any) Options {
	return func(eo *exporterOptions) {
		eo.backend = append(eo.backend, options...)
	}
}

// New validates the fatal preconditions - output directory and backend
// availability - and returns an Exporter ready to consume rows. Any
// error from New means no row can be processed.
func New(format, dir string, options ...Options) (*Exporter, error) {
	opts := evalExporterOptions(options...)

	if err := os.MkdirAll(dir, 0775); err != nil {
		return nil, fmt.Errorf("cannot create output directory %s: %w", dir, err)
	}

	backend, err := NewBackend(format, opts.backend...)
	if err != nil {
		return nil, err
	}
	if err = backend.Probe(); err != nil {
		return nil, err
	}

	e := &Exporter{
		dir:         dir,
		suffix:      opts.suffix,
		backend:     backend,
		noPlans:     opts.noPlans,
		noQueryText: opts.noQueryText,
		raiseErrors: opts.raiseErrors,
	}
	if opts.progress {
		e.bar = progressbar.Default(-1, "exporting")
	}
	return e, nil
}

// Suffix returns the filename token in use for this invocation.
func (e *Exporter) Suffix() string {
	return e.suffix
}

// Export consumes a stream of rows until it is closed. Per-row
// failures never stop the batch; they are logged with the row name and
// collected. The returned error is nil when every row succeeded,
// otherwise either the joined per-row errors (when raising is enabled)
// or ErrRowsFailed.
func (e *Exporter) Export(rows <-chan diagnostic.Row) error {
	var failures []error

	for row := range rows {
		if err := e.ExportRow(row); err != nil {
			log.Error().Err(err).Msgf("export of %q failed", row.Name)
			failures = append(failures, fmt.Errorf("row %q: %w", row.Name, err))
		}
		if e.bar != nil {
			e.bar.Add(1)
		}
	}
	if e.bar != nil {
		e.bar.Finish()
	}

	if len(failures) == 0 {
		return nil
	}
	if e.raiseErrors {
		return errors.Join(failures...)
	}
	return fmt.Errorf("%w: %d failed", ErrRowsFailed, len(failures))
}

// ExportRow runs the pipeline for a single row: skip empty results,
// extract both special columns in sequence, route the extracted
// values, then export the residual records.
func (e *Exporter) ExportRow(row diagnostic.Row) error {
	if len(row.Result) == 0 {
		log.Info().Msgf("no results for %s (%s), skipping", row.Name, row.SQLInstance)
		return nil
	}

	residual, plans, _ := diagnostic.ExtractColumn(row.Result, diagnostic.QueryPlanColumn)
	residual, queryTexts, _ := diagnostic.ExtractColumn(residual, diagnostic.QueryTextColumn)

	target := NewTarget(e.dir, e.suffix, row)

	if err := routeArtifacts(target, PlanArtifact, plans, e.noPlans); err != nil {
		return err
	}
	if err := routeArtifacts(target, QueryTextArtifact, queryTexts, e.noQueryText); err != nil {
		return err
	}

	path := target.Tabular(e.backend.Ext())
	log.Info().Msgf("exporting %s to %s", row.Name, path)
	return e.backend.WriteTable(path, row, residual)
}
