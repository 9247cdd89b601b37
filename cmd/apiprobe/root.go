package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hamed0406/apiprobe/internal/config"
)

const version = "0.3.0"

// errProbesFailed signals a non-zero exit after a run with failures.
// Returning it instead of calling os.Exit lets deferred cleanup (log
// sync, report writes) finish first.
var errProbesFailed = errors.New("one or more probes failed")

var (
	cfgPath string
	noColor bool

	rootCmd = &cobra.Command{
		Use:           "apiprobe",
		Short:         "HTTP probe runner with pass/fail reports",
		Long:          "apiprobe executes declarative HTTP probes against REST APIs,\nclassifies each outcome, and writes a JSON report.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("apiprobe " + version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(runCmd, auditCmd, serveCmd, versionCmd)
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgPath)
}
