package security

import (
	"fmt"
	"strings"

	"github.com/hamed0406/apiprobe/internal/probe"
)

// Finding is one policy-level observation over a finished audit run.
type Finding struct {
	Severity string `json:"severity"` // INFO | LOW | MEDIUM | HIGH
	Title    string `json:"title"`
	Evidence string `json:"evidence"`
}

// Evaluate runs every policy over the audit results.
func Evaluate(results []probe.Result) []Finding {
	var findings []Finding
	if f := detectNoThrottling(results); f != nil {
		findings = append(findings, *f)
	}
	if f := detectSQLReflection(results); f != nil {
		findings = append(findings, *f)
	}
	return findings
}

// detectNoThrottling flags the login series when repeated failed
// credential posts all came back with the same accepting status: the
// endpoint never rate-limited or locked out.
func detectNoThrottling(results []probe.Result) *Finding {
	var statuses []int
	for _, r := range results {
		if !strings.HasPrefix(r.Name, loginProbePrefix) || r.StatusCode == nil {
			continue
		}
		statuses = append(statuses, *r.StatusCode)
	}
	if len(statuses) < loginAttempts {
		return nil
	}
	for _, s := range statuses {
		if s == 429 || s == 423 {
			return nil
		}
	}
	first := statuses[0]
	for _, s := range statuses[1:] {
		if s != first {
			return nil
		}
	}
	return &Finding{
		Severity: "MEDIUM",
		Title:    "no throttling detected on login endpoint",
		Evidence: fmt.Sprintf("%d identical failed logins all answered %d", len(statuses), first),
	}
}

// detectSQLReflection reads the captured bodies rather than the outcome:
// a payload probe can fail on the status rule alone, which says nothing
// about reflection.
func detectSQLReflection(results []probe.Result) *Finding {
	for _, r := range results {
		if !strings.HasPrefix(r.Name, "injection:") || r.Body == nil {
			continue
		}
		if reflectsSQLError(*r.Body) {
			return &Finding{
				Severity: "HIGH",
				Title:    "SQL error signature reflected in response",
				Evidence: r.Name,
			}
		}
	}
	return nil
}
