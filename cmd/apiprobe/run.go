package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/apiprobe/internal/logging"
	"github.com/hamed0406/apiprobe/internal/probe"
	"github.com/hamed0406/apiprobe/internal/report"
	"github.com/hamed0406/apiprobe/internal/suite"
)

var (
	runSuitePath  string
	runBaseURL    string
	runReportPath string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Execute a probe suite and report",
		RunE:  runRun,
	}
)

func init() {
	runCmd.Flags().StringVar(&runSuitePath, "suite", "", "suite file (YAML)")
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "override the suite's base URL")
	runCmd.Flags().StringVar(&runReportPath, "report", "", "JSON report destination")
	_ = runCmd.MarkFlagRequired("suite")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	st, err := suite.Load(runSuitePath)
	if err != nil {
		return err
	}
	specs, err := st.Build(runBaseURL)
	if err != nil {
		return err
	}

	runner := probe.NewRunner(nil)
	results, err := runner.RunAll(cmd.Context(), specs)
	if err != nil {
		return err
	}
	for _, r := range results {
		logger.Info("probe_done",
			zap.String("name", r.Name),
			zap.String("outcome", string(r.Outcome)),
			zap.String("error", r.ErrorMessage),
		)
	}

	target := runBaseURL
	if target == "" {
		target = st.BaseURL
	}
	doc := report.New(target, runner.Report())
	doc.Render(cmd.OutOrStdout(), noColor)

	out := runReportPath
	if out == "" {
		out = cfg.ReportPath
	}
	if err := doc.Write(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nDetailed report saved to: %s\n", out)

	if !doc.AllPassed() {
		return errProbesFailed
	}
	return nil
}
