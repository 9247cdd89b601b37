package probe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExecute_InvalidSpecBeforeIO(t *testing.T) {
	hit := false
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer s.Close()

	r := NewRunner(nil)
	cases := []Spec{
		{Name: "zero timeout", Method: "GET", URL: s.URL, Timeout: 0},
		{Name: "negative timeout", Method: "GET", URL: s.URL, Timeout: -time.Second},
		{Name: "bad method", Method: "FETCH", URL: s.URL, Timeout: time.Second},
		{Name: "no url", Method: "GET", URL: "", Timeout: time.Second},
	}
	for _, spec := range cases {
		_, err := r.Execute(context.Background(), spec)
		if !errors.Is(err, ErrInvalidSpec) {
			t.Fatalf("%s: want ErrInvalidSpec, got %v", spec.Name, err)
		}
	}
	if hit {
		t.Fatal("invalid spec must not reach the network")
	}
	if len(r.Results()) != 0 {
		t.Fatalf("invalid specs must not be logged, log has %d", len(r.Results()))
	}
}

func TestExecute_PassWithJSONBody(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		w.Write([]byte(`{"id":1,"name":"Ada"}`))
	}))
	defer s.Close()

	r := NewRunner(nil)
	out, err := r.Execute(context.Background(), Spec{
		Name: "get user", Method: "GET", URL: s.URL + "/users/1",
		Timeout: 2 * time.Second, ExpectStatus: 200,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.Outcome != OutcomePass {
		t.Fatalf("want PASS, got %+v", out)
	}
	if out.StatusCode == nil || *out.StatusCode != 200 {
		t.Fatalf("want status 200, got %v", out.StatusCode)
	}
	if out.Body == nil || !out.Body.IsJSON {
		t.Fatalf("want structured body, got %+v", out.Body)
	}
	m, ok := out.Body.Structured.(map[string]any)
	if !ok || m["name"] != "Ada" {
		t.Fatalf("body not decoded: %+v", out.Body.Structured)
	}
	if out.LatencyMS == nil || *out.LatencyMS < 0 {
		t.Fatalf("latency should be >= 0, got %v", out.LatencyMS)
	}
}

func TestExecute_StatusMismatchFails(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer s.Close()

	r := NewRunner(nil)
	out, _ := r.Execute(context.Background(), Spec{
		Name: "create", Method: "POST", URL: s.URL,
		Timeout: 2 * time.Second, ExpectStatus: 201,
	})
	if out.Outcome != OutcomeFail {
		t.Fatalf("want FAIL, got %+v", out)
	}
	if !strings.Contains(out.ErrorMessage, "201") || !strings.Contains(out.ErrorMessage, "200") {
		t.Fatalf("message should carry both statuses, got %q", out.ErrorMessage)
	}
}

func TestExecute_DefaultStatusRule(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", 500)
	}))
	defer s.Close()

	r := NewRunner(nil)
	out, _ := r.Execute(context.Background(), Spec{
		Name: "default rule", Method: "GET", URL: s.URL, Timeout: 2 * time.Second,
	})
	if out.Outcome != OutcomeFail {
		t.Fatalf("want FAIL on 500 without expectation, got %+v", out)
	}
	if !strings.Contains(out.ErrorMessage, "non-success status 500") {
		t.Fatalf("unexpected message %q", out.ErrorMessage)
	}
}

func TestExecute_TimeoutIsError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(200)
	}))
	defer s.Close()

	r := NewRunner(nil)
	out, err := r.Execute(context.Background(), Spec{
		Name: "slow", Method: "GET", URL: s.URL, Timeout: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("timeout must not raise: %v", err)
	}
	if out.Outcome != OutcomeError {
		t.Fatalf("want ERROR, got %+v", out)
	}
	if out.StatusCode != nil {
		t.Fatalf("want absent status on transport error, got %d", *out.StatusCode)
	}
	if out.ErrorMessage == "" {
		t.Fatal("want non-empty error message")
	}
}

func TestExecute_ConnectionRefusedIsError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := s.URL
	s.Close() // nothing listens here anymore

	r := NewRunner(nil)
	out, _ := r.Execute(context.Background(), Spec{
		Name: "refused", Method: "GET", URL: addr, Timeout: time.Second,
	})
	if out.Outcome != OutcomeError || out.StatusCode != nil {
		t.Fatalf("want ERROR with no status, got %+v", out)
	}
}

func TestExecute_NonJSONBodyFallsBackToRaw(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not json</html>"))
	}))
	defer s.Close()

	r := NewRunner(nil)
	out, err := r.Execute(context.Background(), Spec{
		Name: "html", Method: "GET", URL: s.URL, Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("parse fallback must not raise: %v", err)
	}
	if out.Outcome != OutcomePass {
		t.Fatalf("raw body alone must not fail the probe, got %+v", out)
	}
	if out.Body == nil || out.Body.IsJSON || out.Body.Raw != "<html>not json</html>" {
		t.Fatalf("want raw fallback, got %+v", out.Body)
	}
}

func TestExecute_OversizedBodyMarkedTruncated(t *testing.T) {
	// a valid-JSON prefix (all digits) would still parse after the cut,
	// so truncated bodies must stay raw
	huge := strings.Repeat("7", maxBodyBytes+16)
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(huge))
	}))
	defer s.Close()

	r := NewRunner(nil)
	out, err := r.Execute(context.Background(), Spec{
		Name: "huge", Method: "GET", URL: s.URL, Timeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("oversized body must not raise: %v", err)
	}
	if out.Body == nil || !out.Body.Truncated {
		t.Fatalf("want truncation marker, got %+v", out.Body)
	}
	if out.Body.IsJSON || out.Body.Structured != nil {
		t.Fatalf("truncated body must stay raw, got %+v", out.Body)
	}
	if len(out.Body.Raw) != maxBodyBytes {
		t.Fatalf("want raw cut at %d bytes, got %d", maxBodyBytes, len(out.Body.Raw))
	}
}

func TestExecute_BodyPredicate(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer s.Close()

	nonEmpty := func(b Body) bool {
		m, ok := b.Structured.(map[string]any)
		return ok && len(m) > 0
	}

	r := NewRunner(nil)
	out, _ := r.Execute(context.Background(), Spec{
		Name: "empty object", Method: "GET", URL: s.URL,
		Timeout: 2 * time.Second, ExpectBody: nonEmpty,
	})
	if out.Outcome != OutcomeFail || out.ErrorMessage != "body assertion failed" {
		t.Fatalf("want body assertion FAIL, got %+v", out)
	}
}

func TestExecute_SendsBodyQueryAndHeaders(t *testing.T) {
	var gotCT, gotAuth, gotQ string
	var gotBody map[string]any
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotQ = r.URL.Query().Get("limit")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(201)
	}))
	defer s.Close()

	r := NewRunner(nil)
	out, err := r.Execute(context.Background(), Spec{
		Name:         "post",
		Method:       "POST",
		URL:          s.URL + "/posts",
		Headers:      map[string]string{"Authorization": "Bearer tok"},
		Query:        map[string]string{"limit": "5"},
		Body:         map[string]any{"title": "Test Post", "userId": 1},
		Timeout:      2 * time.Second,
		ExpectStatus: 201,
	})
	if err != nil || out.Outcome != OutcomePass {
		t.Fatalf("want PASS, got %+v err=%v", out, err)
	}
	if gotCT != "application/json" || gotAuth != "Bearer tok" || gotQ != "5" {
		t.Fatalf("request not built as specified: ct=%q auth=%q q=%q", gotCT, gotAuth, gotQ)
	}
	if gotBody["title"] != "Test Post" {
		t.Fatalf("body not sent: %+v", gotBody)
	}
}

func TestLog_OneEntryPerExecute(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer s.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	r := NewRunner(nil)
	specs := []Spec{
		{Name: "ok", Method: "GET", URL: s.URL, Timeout: time.Second},
		{Name: "fail", Method: "GET", URL: s.URL, Timeout: time.Second, ExpectStatus: 204},
		{Name: "err", Method: "GET", URL: deadURL, Timeout: time.Second},
	}
	for i, spec := range specs {
		if _, err := r.Execute(context.Background(), spec); err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
		if got := len(r.Results()); got != i+1 {
			t.Fatalf("after %d executes log has %d entries", i+1, got)
		}
	}

	sum := r.Summary()
	if sum.Total != 3 || sum.Passed != 1 || sum.Failed != 1 || sum.Errored != 1 {
		t.Fatalf("summary wrong: %+v", sum)
	}
	if sum.PassRate < 0.33 || sum.PassRate > 0.34 {
		t.Fatalf("pass rate wrong: %v", sum.PassRate)
	}

	// insertion order = execution order
	res := r.Results()
	if res[0].Name != "ok" || res[1].Name != "fail" || res[2].Name != "err" {
		t.Fatalf("order wrong: %+v", res)
	}
}

func TestSummary_EmptyLog(t *testing.T) {
	r := NewRunner(nil)
	sum := r.Summary()
	if sum.Total != 0 || sum.Passed != 0 || sum.Failed != 0 || sum.Errored != 0 || sum.PassRate != 0 {
		t.Fatalf("empty summary wrong: %+v", sum)
	}
}

func TestReport_SnapshotDoesNotAliasLog(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer s.Close()

	r := NewRunner(nil)
	_, _ = r.Execute(context.Background(), Spec{Name: "a", Method: "GET", URL: s.URL, Timeout: time.Second})
	rep := r.Report()
	rep.Results[0].Name = "mutated"
	if r.Results()[0].Name != "a" {
		t.Fatal("report must be a copy, not a view of the log")
	}
}

func TestResult_JSONShape(t *testing.T) {
	res := Result{Name: "n", Outcome: OutcomeError, Timestamp: time.Now().UTC(), ErrorMessage: "dial refused"}
	b, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["statusCode"] != nil || m["latencyMs"] != nil {
		t.Fatalf("absent status/latency must serialize as null: %s", b)
	}
	if m["outcome"] != "ERROR" {
		t.Fatalf("outcome wrong: %s", b)
	}
}
