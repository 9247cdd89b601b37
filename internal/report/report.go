// Package report turns a runner's log into the JSON report document and
// a human-readable console rendering.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hamed0406/apiprobe/internal/probe"
)

// Document is the serialized form of one run: the summary block first,
// then every result in execution order.
type Document struct {
	Target      string         `json:"target,omitempty"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Summary     probe.Summary  `json:"summary"`
	Results     []probe.Result `json:"results"`
}

// New assembles a document from a finished runner report.
func New(target string, rep probe.Report) Document {
	return Document{
		Target:      target,
		GeneratedAt: time.Now().UTC(),
		Summary:     rep.Summary,
		Results:     rep.Results,
	}
}

// Write saves the document as pretty-printed JSON, creating parent
// directories as needed.
func (d Document) Write(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// AllPassed reports whether every probe came back PASS; the CLI exit
// status hangs off this.
func (d Document) AllPassed() bool {
	return d.Summary.Total > 0 && d.Summary.Passed == d.Summary.Total
}
