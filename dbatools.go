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

// Package dbatools is administrative tooling for SQL Server instances.
// It gathers diagnostic query results and index/statistics metadata
// from a running instance and exports them to external file formats.
package dbatools

import (
	_ "embed" // embed the VERSION in the top-level package
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// VERSION is set from the VERSION file at the top of the repo
//
//go:embed VERSION
var VERSION string

// ExecutableName returns the basename of the running program with any
// file extension removed, for use as a configuration and log file
// prefix.
func ExecutableName() string {
	execname := filepath.Base(os.Args[0])
	return strings.TrimSuffix(execname, filepath.Ext(execname))
}

func renderMD(in string) (out string) {
	var width int = 80
	var err error

	style := glamour.WithAutoStyle()
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		style = glamour.WithStandardStyle("ascii")
	} else {
		width, _, err = term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 80
		}
		if width > 132 {
			width = 132
		}
	}

	tr, err := glamour.NewTermRenderer(
		style,
		glamour.WithStylesFromJSONBytes([]byte(`{ "document": { "margin": 2 } }`)),
		glamour.WithWordWrap(width-4),
		glamour.WithEmoji(),
	)
	if err != nil {
		return in
	}
	out, err = tr.Render(in)
	if err != nil {
		return in
	}
	out = html.UnescapeString(out)
	return
}

// RenderHelpAsMD updates the given command to use glamour to render the
// command's Long description as markdown formatted text to an ANSI
// terminal.
func RenderHelpAsMD(command *cobra.Command) {
	cobra.AddTemplateFunc("md", renderMD)
	command.SetHelpTemplate(`{{with (or .Long .Short)}}{{. | md | trimTrailingWhitespaces}}

		{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}
`)
}
