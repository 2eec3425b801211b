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
	_ "embed"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/yoke88/dbatools/pkg/diagnostic"
)

//go:embed _docs/list.md
var listCmdDescription string

func init() {
	DiagCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&queryNames, "queries", "r", "", "list only matching (file globbing style) queries")
	listCmd.Flags().SortFlags = false
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the diagnostic query library",
	Long:  listCmdDescription,
	Args:  cobra.ArbitraryArgs,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Annotations: map[string]string{
		"defaultlog": os.DevNull,
	},
	SilenceUsage:          true,
	DisableAutoGenTag:     true,
	DisableSuggestions:    true,
	DisableFlagsInUseLine: true,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		queries, err := diagnostic.LoadQueries()
		if err != nil {
			return
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Name", "Scope", "Min Version", "Description"})
		for _, q := range diagnostic.FilterQueries(queries, queryNames) {
			scope := "instance"
			if q.DatabaseSpecific {
				scope = "database"
			}
			t.AppendRow(table.Row{q.Number, q.Name, scope, q.MinVersion, q.Description})
		}
		t.Render()
		return
	},
}
