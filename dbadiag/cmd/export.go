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

package cmd

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yoke88/dbatools/pkg/diagnostic"
	"github.com/yoke88/dbatools/pkg/exporter"
)

//go:embed _docs/export.md
var exportCmdDescription string

var exportFormat, outputDir, suffix, queryNames string
var noPlanExport, noQueryExport, raiseErrors bool

func init() {
	DiagCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "F", "csv", "output `format` - one of: csv, xlsx")
	exportCmd.Flags().StringVarP(&outputDir, "output-dir", "D", ".", "write all generated files to `directory`, created if missing")
	exportCmd.Flags().StringVar(&suffix, "suffix", "", "filename `suffix` for this run, defaults to a millisecond timestamp")
	exportCmd.Flags().StringVarP(&queryNames, "queries", "r", "", "run only matching (file globbing style) queries")

	exportCmd.Flags().BoolVar(&noPlanExport, "no-plan-export", false, "extract query plans but do not write .sqlplan files")
	exportCmd.Flags().BoolVar(&noQueryExport, "no-query-export", false, "extract query text but do not write .sql files")
	exportCmd.Flags().BoolVar(&raiseErrors, "raise-errors", false, "return per-row export failures instead of only logging them")

	exportCmd.Flags().StringVarP(&hostname, "hostname", "H", "", "connect to SQL Server at `hostname`")
	exportCmd.Flags().StringVarP(&port, "port", "P", "", "connect to SQL Server on `port`")
	exportCmd.Flags().StringVarP(&instance, "instance", "I", "", "connect to named `instance` (instead of a port)")
	exportCmd.Flags().StringVarP(&username, "username", "u", "", "SQL Server `username`")
	exportCmd.Flags().StringVarP(&password, "password", "p", "", "SQL Server `password`")

	exportCmd.Flags().SortFlags = false
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run diagnostic queries and export the results",
	Long:  exportCmdDescription,
	Args:  cobra.ArbitraryArgs,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:          true,
	DisableAutoGenTag:     true,
	DisableSuggestions:    true,
	DisableFlagsInUseLine: true,
	PreRun: func(cmd *cobra.Command, args []string) {
		cf.BindPFlag("export.format", cmd.Flags().Lookup("format"))
		cf.BindPFlag("export.directory", cmd.Flags().Lookup("output-dir"))
		cf.BindPFlag("mssql.hostname", cmd.Flags().Lookup("hostname"))
		cf.BindPFlag("mssql.port", cmd.Flags().Lookup("port"))
		cf.BindPFlag("mssql.instance", cmd.Flags().Lookup("instance"))
		cf.BindPFlag("mssql.username", cmd.Flags().Lookup("username"))
		cf.BindPFlag("mssql.password", cmd.Flags().Lookup("password"))
	},
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		// Handle SIGINT (CTRL+C) gracefully.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		queries, err := diagnostic.LoadQueries()
		if err != nil {
			return
		}
		queries = diagnostic.FilterQueries(queries, queryNames)
		if len(queries) == 0 {
			return fmt.Errorf("no queries match %q", queryNames)
		}

		details := connectionDetails()
		conn, err := diagnostic.NewConnection(details)
		if err != nil {
			return
		}
		defer conn.Close()

		exp, err := exporter.New(
			cf.GetString("export.format"),
			cf.GetString("export.directory"),
			exporter.Suffix(suffix),
			exporter.SuppressPlans(noPlanExport),
			exporter.SuppressQueryText(noQueryExport),
			exporter.RaiseErrors(raiseErrors),
			exporter.Progress(!quiet && !debug && !trace),
			exporter.BackendOptions(
				exporter.OnSheetCollision(cf.GetString("xlsx.sheet-collision")),
				exporter.MinColumnWidth(cf.GetFloat64("xlsx.min-col-width")),
				exporter.MaxColumnWidth(cf.GetFloat64("xlsx.max-col-width")),
			),
		)
		if err != nil {
			return
		}

		log.Info().Msgf("exporting %d queries from %s with suffix %s", len(queries), details.InstanceName(), exp.Suffix())

		runner := diagnostic.NewRunner(conn, details.InstanceName(), queries)
		return exp.Export(runner.Run(ctx))
	},
}

var hostname, port, instance, username, password string

func connectionDetails() *diagnostic.ConnectionDetails {
	return &diagnostic.ConnectionDetails{
		Hostname:               cf.GetString("mssql.hostname"),
		Port:                   cf.GetString("mssql.port"),
		Instance:               cf.GetString("mssql.instance"),
		Username:               cf.GetString("mssql.username"),
		Password:               cf.GetString("mssql.password"),
		Timeout:                cf.GetString("mssql.timeout"),
		EnableSSL:              cf.GetBool("mssql.encrypt"),
		TrustServerCertificate: cf.GetBool("mssql.trust-server-certificate"),
		CertificateLocation:    cf.GetString("mssql.certificate"),
	}
}
