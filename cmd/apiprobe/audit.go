package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/apiprobe/internal/logging"
	"github.com/hamed0406/apiprobe/internal/probe"
	"github.com/hamed0406/apiprobe/internal/report"
	"github.com/hamed0406/apiprobe/internal/security"
)

var (
	auditBaseURL    string
	auditReportPath string

	auditCmd = &cobra.Command{
		Use:   "audit",
		Short: "Run the security audit suite against a target API",
		RunE:  runAudit,
	}
)

func init() {
	auditCmd.Flags().StringVar(&auditBaseURL, "base-url", "", "target API base URL")
	auditCmd.Flags().StringVar(&auditReportPath, "report", "", "JSON report destination")
	_ = auditCmd.MarkFlagRequired("base-url")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	specs := security.AuditSuite(auditBaseURL, cfg.Timeout())
	runner := probe.NewRunner(nil)
	if _, err := runner.RunAll(cmd.Context(), specs); err != nil {
		return err
	}

	doc := report.New(auditBaseURL, runner.Report())
	doc.Render(cmd.OutOrStdout(), noColor)

	findings := security.Evaluate(runner.Results())
	if len(findings) > 0 {
		warn := color.New(color.FgRed, color.Bold).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", warn("Findings:"))
		for _, f := range findings {
			fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s (%s)\n", f.Severity, f.Title, f.Evidence)
			logger.Warn("audit_finding",
				zap.String("severity", f.Severity),
				zap.String("title", f.Title),
				zap.String("evidence", f.Evidence),
			)
		}
	}

	out := auditReportPath
	if out == "" {
		out = cfg.ReportPath
	}
	if err := doc.Write(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nDetailed report saved to: %s\n", out)

	if !doc.AllPassed() || len(findings) > 0 {
		return errProbesFailed
	}
	return nil
}
