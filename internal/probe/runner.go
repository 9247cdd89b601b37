package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Runner executes probes sequentially and accumulates their results in an
// in-memory log, one entry per Execute call regardless of outcome.
//
// A Runner is owned by a single goroutine; it does no locking. Callers
// wanting parallel probing run independent Runners.
type Runner struct {
	client *http.Client
	log    []Result
}

// NewRunner builds a Runner around the given client. A nil client gets a
// default with no global timeout; per-probe timeouts come from the Spec.
func NewRunner(client *http.Client) *Runner {
	if client == nil {
		client = &http.Client{}
	}
	return &Runner{client: client, log: make([]Result, 0, 16)}
}

// Execute runs one probe and appends its Result to the log. The only
// error it returns is ErrInvalidSpec (checked before any network call);
// transport failures, status mismatches and body assertion failures are
// all captured in the Result, never raised.
func (r *Runner) Execute(ctx context.Context, spec Spec) (Result, error) {
	if err := spec.validate(); err != nil {
		return Result{}, err
	}

	res := Result{Name: spec.Name, Timestamp: time.Now().UTC()}

	rctx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	req, err := buildRequest(rctx, spec)
	if err != nil {
		// URL parse failures surface before any I/O happens
		res.Outcome = OutcomeError
		res.ErrorMessage = err.Error()
		r.log = append(r.log, res)
		return res, nil
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	res.LatencyMS = &latency
	if err != nil {
		res.Outcome = OutcomeError
		res.ErrorMessage = err.Error()
		r.log = append(r.log, res)
		return res, nil
	}
	defer resp.Body.Close()

	res.StatusCode = &resp.StatusCode
	res.Body = decodeBody(resp.Body)

	res.Outcome, res.ErrorMessage = classify(spec, resp.StatusCode, res.Body)
	r.log = append(r.log, res)
	return res, nil
}

// RunAll executes each spec in order and returns the results of this
// batch. It stops early only on a malformed spec.
func (r *Runner) RunAll(ctx context.Context, specs []Spec) ([]Result, error) {
	out := make([]Result, 0, len(specs))
	for _, s := range specs {
		res, err := r.Execute(ctx, s)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Results returns a snapshot copy of the log, in execution order.
func (r *Runner) Results() []Result {
	out := make([]Result, len(r.log))
	copy(out, r.log)
	return out
}

// Summary counts the current log by outcome. PassRate is 0 on an empty
// log.
func (r *Runner) Summary() Summary {
	s := Summary{Total: len(r.log)}
	for _, res := range r.log {
		switch res.Outcome {
		case OutcomePass:
			s.Passed++
		case OutcomeFail:
			s.Failed++
		default:
			s.Errored++
		}
	}
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
	}
	return s
}

// Report snapshots the log plus its summary. The log is not mutated.
func (r *Runner) Report() Report {
	return Report{Summary: r.Summary(), Results: r.Results()}
}

func buildRequest(ctx context.Context, spec Spec) (*http.Request, error) {
	target := spec.URL
	if len(spec.Query) > 0 {
		u, err := url.Parse(spec.URL)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		for k, v := range spec.Query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	var body io.Reader
	if spec.Body != nil {
		b, err := json.Marshal(spec.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, target, body)
	if err != nil {
		return nil, err
	}
	if spec.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range spec.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// maxBodyBytes caps how much of a response body a probe keeps.
const maxBodyBytes = 4 << 20

// decodeBody reads the payload and decodes it once: JSON when it parses,
// raw text otherwise. This never fails; an unreadable body becomes an
// empty raw body. Reading one byte past the cap detects oversized
// payloads, which stay raw with Truncated set.
func decodeBody(rc io.Reader) *Body {
	raw, err := io.ReadAll(io.LimitReader(rc, maxBodyBytes+1))
	truncated := len(raw) > maxBodyBytes
	if truncated {
		raw = raw[:maxBodyBytes]
	}
	if err != nil || truncated || len(raw) == 0 {
		return &Body{Raw: string(raw), Truncated: truncated}
	}
	var v any
	if json.Unmarshal(raw, &v) == nil {
		return &Body{Structured: v, IsJSON: true}
	}
	return &Body{Raw: string(raw)}
}

func classify(spec Spec, status int, body *Body) (Outcome, string) {
	if spec.ExpectStatus != 0 && status != spec.ExpectStatus {
		return OutcomeFail, fmt.Sprintf("expected status %d, got %d", spec.ExpectStatus, status)
	}
	if spec.ExpectStatus == 0 && (status < 200 || status >= 300) {
		return OutcomeFail, fmt.Sprintf("non-success status %d", status)
	}
	if spec.ExpectBody != nil && !spec.ExpectBody(*body) {
		return OutcomeFail, "body assertion failed"
	}
	return OutcomePass, ""
}
