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
	"fmt"
	"os"
	dbg "runtime/debug"

	"github.com/spf13/cobra"

	"github.com/yoke88/dbatools"
)

func init() {
	DiagCmd.AddCommand(versionCmd)
}

//go:embed _docs/version.md
var versionCmdDescription string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show program version",
	Long:  versionCmdDescription,
	Annotations: map[string]string{
		"defaultlog": os.DevNull,
	},
	SilenceUsage:          true,
	Version:               dbatools.VERSION,
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s version %s\n", execname, cmd.Version)
		if debug {
			info, ok := dbg.ReadBuildInfo()
			if ok {
				fmt.Println("additional info:")
				fmt.Println(info)
			}
		}
	},
}
