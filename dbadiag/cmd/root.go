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
	"bytes"
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	dbg "runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/yoke88/dbatools"
)

var cfgFile string
var execname = dbatools.ExecutableName()
var debug, trace, quiet bool
var logFile string

func init() {
	DiagCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable extra debug output")
	DiagCmd.PersistentFlags().MarkHidden("debug")

	DiagCmd.PersistentFlags().BoolVarP(&trace, "trace", "t", false, "enable trace output (SQL statements etc.) - implies debug")
	DiagCmd.PersistentFlags().MarkHidden("trace")

	DiagCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	DiagCmd.PersistentFlags().BoolP("help", "h", false, "Print usage")
	DiagCmd.PersistentFlags().MarkHidden("help")

	DiagCmd.PersistentFlags().StringVarP(&cfgFile, "config", "f", "", "Use configuration `FILE`")
	DiagCmd.PersistentFlags().StringVarP(&logFile, "logfile", "l", "-", "Write logs to `file`. Use '-' for console or "+os.DevNull+" for none")

	DiagCmd.Flags().SortFlags = false
}

var cf *viper.Viper

//go:embed dbadiag.defaults.yaml
var defaults []byte

//go:embed _docs/dbadiag.md
var rootCmdDescription string

// DiagCmd represents the base command when called without any
// subcommands
var DiagCmd = &cobra.Command{
	Use:   "dbadiag [FLAGS...]",
	Short: "Gather and export SQL Server diagnostic information",
	Long:  rootCmdDescription,
	Args:  cobra.ArbitraryArgs,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Version:               dbatools.VERSION,
	DisableAutoGenTag:     true,
	DisableSuggestions:    true,
	DisableFlagsInUseLine: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		initConfig(cmd)
		return
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() and only needs to
// happen once.
func Execute() {
	dbatools.RenderHelpAsMD(DiagCmd)

	err := DiagCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command) {
	if cf == nil {
		cf = viper.New()
		cf.SetConfigType("yaml")
		if err := cf.ReadConfig(bytes.NewReader(defaults)); err != nil {
			log.Fatal().Err(err).Msg("internal defaults are invalid")
		}

		if cfgFile != "" {
			cf.SetConfigFile(cfgFile)
			if err := cf.MergeInConfig(); err != nil {
				log.Fatal().Err(err).Msgf("loading from %s", cfgFile)
			}
		} else {
			cf.SetConfigName(execname)
			cf.AddConfigPath(".")
			if dir, err := os.UserConfigDir(); err == nil {
				cf.AddConfigPath(filepath.Join(dir, execname))
			}
			var notfound viper.ConfigFileNotFoundError
			if err := cf.MergeInConfig(); err != nil && !errors.As(err, &notfound) {
				log.Fatal().Err(err).Msg("loading configuration")
			}
		}

		cf.SetEnvPrefix(strings.ToUpper(execname))
		cf.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		cf.AutomaticEnv()
	}

	// the logfile flag overrides config, and some commands want no log
	// at all by default
	if cmd != nil {
		if f := cmd.Flag("logfile"); f != nil && !f.Changed {
			if lf := cf.GetString("dbadiag.log.filename"); lf != "" {
				logFile = lf
			}
			if cmd.Annotations["defaultlog"] != "" {
				logFile = cmd.Annotations["defaultlog"]
			}
		}
	}
	dbatools.LogInit(execname,
		dbatools.SetLogfile(logFile),
		dbatools.LumberjackOptions(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    cf.GetInt("dbadiag.log.max-size"),
			MaxBackups: cf.GetInt("dbadiag.log.max-backups"),
			MaxAge:     cf.GetInt("dbadiag.log.stale-after"),
			Compress:   cf.GetBool("dbadiag.log.compress"),
		}),
		dbatools.RotateOnStart(cf.GetBool("dbadiag.log.rotate-on-start")),
	)

	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case trace:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if cmd != nil {
		info, _ := dbg.ReadBuildInfo()
		log.Debug().Msgf("command %q version %s built with %s", cmd.Name(), dbatools.VERSION, info.GoVersion)
	}
}
