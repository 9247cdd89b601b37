package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	passMark = color.New(color.FgGreen, color.Bold).SprintFunc()
	failMark = color.New(color.FgRed, color.Bold).SprintFunc()
	errMark  = color.New(color.FgYellow, color.Bold).SprintFunc()
	dim      = color.New(color.Faint).SprintFunc()
)

// Render writes the console view of the document: one line per probe,
// then the summary footer.
func (d Document) Render(w io.Writer, noColor bool) {
	if noColor {
		color.NoColor = true
	}

	if d.Target != "" {
		fmt.Fprintf(w, "Target: %s\n", d.Target)
	}
	for _, r := range d.Results {
		mark := passMark("[PASS]")
		switch r.Outcome {
		case "FAIL":
			mark = failMark("[FAIL]")
		case "ERROR":
			mark = errMark("[ERR ]")
		}

		line := fmt.Sprintf("%s %s", mark, r.Name)
		if r.StatusCode != nil {
			line += dim(fmt.Sprintf("  status=%d", *r.StatusCode))
		}
		if r.LatencyMS != nil {
			line += dim(fmt.Sprintf("  %.1fms", *r.LatencyMS))
		}
		fmt.Fprintln(w, line)
		if r.ErrorMessage != "" {
			fmt.Fprintf(w, "       %s\n", r.ErrorMessage)
		}
	}

	s := d.Summary
	fmt.Fprintf(w, "\n%d probes: %d passed, %d failed, %d errored (%.1f%% pass rate)\n",
		s.Total, s.Passed, s.Failed, s.Errored, s.PassRate*100)
}
