package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// chdirTemp moves the process into a fresh temp dir so relative paths
// (logs, reports) stay out of the repo.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeSuite(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "suite.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write suite: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func TestRun_FailingSuiteSignalsExit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	dir := chdirTemp(t)
	suitePath := writeSuite(t, dir, "name: smoke\nprobes:\n  - name: broken\n    url: "+ts.URL+"\n")
	reportPath := filepath.Join(dir, "report.json")

	err := execute(t, "run", "--suite", suitePath, "--report", reportPath, "--no-color")
	if !errors.Is(err, errProbesFailed) {
		t.Fatalf("want errProbesFailed, got %v", err)
	}
	// the failure exit must not skip the report write
	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("report not written: %v", err)
	}
}

func TestRun_PassingSuiteExitsClean(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	dir := chdirTemp(t)
	suitePath := writeSuite(t, dir, "name: smoke\nprobes:\n  - name: healthy\n    url: "+ts.URL+"\n")

	err := execute(t, "run", "--suite", suitePath, "--report", filepath.Join(dir, "report.json"), "--no-color")
	if err != nil {
		t.Fatalf("want clean exit, got %v", err)
	}
}
