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
	"context"
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/rs/zerolog/log"
)

// Runner executes the diagnostic query library against one instance
// and streams the results row by row. Instance scoped queries run
// once, database specific ones once per online user database. Queries
// whose min-version exceeds the server product version are skipped.
type Runner struct {
	conn     *Connection
	instance string
	queries  []Query
}

func NewRunner(conn *Connection, instance string, queries []Query) *Runner {
	return &Runner{
		conn:     conn,
		instance: instance,
		queries:  queries,
	}
}

// Run starts executing the query library and returns a channel of
// result rows. The channel is closed once all queries have run or the
// context is cancelled. Failures of individual queries are logged and
// do not stop the run.
func (r *Runner) Run(ctx context.Context) <-chan Row {
	out := make(chan Row)
	go func() {
		defer close(out)
		r.run(ctx, out)
	}()
	return out
}

func (r *Runner) run(ctx context.Context, out chan<- Row) {
	version, err := r.serverVersion(ctx)
	if err != nil {
		log.Error().Err(err).Msg("cannot determine server version, version-gated queries will be skipped")
	}

	var databases []string
	for _, q := range r.queries {
		if q.DatabaseSpecific {
			databases, err = r.userDatabases(ctx)
			if err != nil {
				log.Error().Err(err).Msg("cannot list databases, database specific queries will be skipped")
				databases = nil
			}
			break
		}
	}

	for _, q := range r.queries {
		if ctx.Err() != nil {
			return
		}
		if q.MinVersion != "" {
			min, verr := semver.Parse(q.MinVersion)
			if verr != nil || version.LT(min) {
				log.Info().Msgf("skipping %q, needs server version %s or later", q.Name, q.MinVersion)
				continue
			}
		}

		if !q.DatabaseSpecific {
			records, qerr := r.runQuery(ctx, q.SQL, "")
			if qerr != nil {
				log.Error().Err(qerr).Msgf("query %q failed", q.Name)
				continue
			}
			if !send(ctx, out, Row{
				Name:        q.Name,
				Number:      q.Number,
				SQLInstance: r.instance,
				Result:      records,
			}) {
				return
			}
			continue
		}

		for _, database := range databases {
			records, qerr := r.runQuery(ctx, q.SQL, database)
			if qerr != nil {
				log.Error().Err(qerr).Msgf("query %q failed on database %q", q.Name, database)
				continue
			}
			if !send(ctx, out, Row{
				Name:             q.Name,
				Number:           q.Number,
				SQLInstance:      r.instance,
				DatabaseName:     database,
				DatabaseSpecific: true,
				Result:           records,
			}) {
				return
			}
		}
	}
}

func send(ctx context.Context, out chan<- Row, row Row) bool {
	select {
	case out <- row:
		return true
	case <-ctx.Done():
		return false
	}
}

// serverVersion reads SERVERPROPERTY('ProductVersion') and reduces it
// to a semver value. Product versions carry four fields, only the
// first three are significant for query gating.
func (r *Runner) serverVersion(ctx context.Context) (version semver.Version, err error) {
	var product string
	if err = r.conn.db.GetContext(ctx, &product,
		"SELECT CONVERT(varchar(128), SERVERPROPERTY('ProductVersion')) AS [ProductVersion]"); err != nil {
		return
	}
	parts := strings.Split(product, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return semver.Parse(strings.Join(parts, "."))
}

func (r *Runner) userDatabases(ctx context.Context) (databases []string, err error) {
	err = r.conn.db.SelectContext(ctx, &databases,
		"SELECT [name] FROM sys.databases WITH (NOLOCK) WHERE state = 0 AND database_id > 4 ORDER BY [name]")
	return
}

// runQuery executes one statement and converts every result row into
// a Record, preserving the column order reported by the driver. A non
// empty database name scopes the statement with a leading USE.
func (r *Runner) runQuery(ctx context.Context, sqltext, database string) (records []Record, err error) {
	if database != "" {
		sqltext = fmt.Sprintf("USE [%s];\n%s", strings.ReplaceAll(database, "]", "]]"), sqltext)
	}
	rows, err := r.conn.db.QueryxContext(ctx, sqltext)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		cells := map[string]any{}
		if err = rows.MapScan(cells); err != nil {
			return nil, err
		}
		record := NewRecord()
		for _, column := range columns {
			record.Set(column, ValueOf(cells[column]))
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
