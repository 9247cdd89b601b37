package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hamed0406/apiprobe/internal/probe"
)

func sampleReport() probe.Report {
	status := 200
	lat := 12.5
	return probe.Report{
		Summary: probe.Summary{Total: 2, Passed: 1, Failed: 1, PassRate: 0.5},
		Results: []probe.Result{
			{Name: "ok", Outcome: probe.OutcomePass, StatusCode: &status, LatencyMS: &lat},
			{Name: "bad", Outcome: probe.OutcomeFail, StatusCode: &status, ErrorMessage: "expected status 201, got 200"},
		},
	}
}

func TestWrite_ProducesSpecShape(t *testing.T) {
	doc := New("https://api.example.com", sampleReport())
	path := filepath.Join(t.TempDir(), "out", "report.json")
	if err := doc.Write(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("report not valid json: %v", err)
	}

	sum, ok := m["summary"].(map[string]any)
	if !ok || sum["total"] != float64(2) || sum["passRate"] != 0.5 {
		t.Fatalf("summary block wrong: %+v", m["summary"])
	}
	results, ok := m["results"].([]any)
	if !ok || len(results) != 2 {
		t.Fatalf("results block wrong: %+v", m["results"])
	}
	first := results[0].(map[string]any)
	if first["outcome"] != "PASS" || first["statusCode"] != float64(200) {
		t.Fatalf("result shape wrong: %+v", first)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("report should be pretty-printed")
	}
}

func TestAllPassed(t *testing.T) {
	doc := New("", sampleReport())
	if doc.AllPassed() {
		t.Fatal("mixed outcomes must not count as all-pass")
	}
	doc.Summary = probe.Summary{Total: 3, Passed: 3, PassRate: 1}
	if !doc.AllPassed() {
		t.Fatal("want all-pass")
	}
	doc.Summary = probe.Summary{}
	if doc.AllPassed() {
		t.Fatal("empty run must not count as all-pass")
	}
}

func TestRender_IncludesOutcomesAndSummary(t *testing.T) {
	var buf bytes.Buffer
	New("https://api.example.com", sampleReport()).Render(&buf, true)
	out := buf.String()

	for _, want := range []string{"[PASS] ok", "[FAIL] bad", "expected status 201, got 200", "2 probes", "50.0% pass rate"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q in:\n%s", want, out)
		}
	}
}
