package probe

import (
	"errors"
	"fmt"
	"time"
)

// Outcome is the tri-state classification of a probe result.
type Outcome string

const (
	OutcomePass  Outcome = "PASS"
	OutcomeFail  Outcome = "FAIL"
	OutcomeError Outcome = "ERROR"
)

// ErrInvalidSpec marks a malformed Spec. It is returned by Execute before
// any network activity and is never recorded in the result log.
var ErrInvalidSpec = errors.New("invalid probe spec")

var allowedMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"HEAD":    true,
	"OPTIONS": true,
}

// Spec describes one HTTP probe: the request to send plus the pass
// criteria. Callers build one Spec per probe and should not reuse or
// modify it after Execute.
//
// URL must be absolute; joining against a base URL is the suite layer's
// job. Body, when non-nil, is JSON-encoded as the request payload.
type Spec struct {
	Name         string
	Method       string
	URL          string
	Headers      map[string]string
	Query        map[string]string
	Body         any
	Timeout      time.Duration
	ExpectStatus int             // 0 means "any 2xx"
	ExpectBody   func(Body) bool // optional assertion on the decoded body
}

func (s Spec) validate() error {
	if !allowedMethods[s.Method] {
		return fmt.Errorf("%w: method %q", ErrInvalidSpec, s.Method)
	}
	if s.URL == "" {
		return fmt.Errorf("%w: empty url", ErrInvalidSpec)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be > 0, got %s", ErrInvalidSpec, s.Timeout)
	}
	return nil
}

// Body is the response payload, decoded once: either structured JSON or
// the raw text when decoding failed. A body that fails to parse is not a
// probe failure by itself.
//
// Truncated marks a payload cut at the read limit. Truncated bodies are
// kept raw and never decoded, since a prefix of valid JSON can still
// parse and would assert against incomplete data.
type Body struct {
	Structured any    `json:"structured,omitempty"`
	Raw        string `json:"raw,omitempty"`
	IsJSON     bool   `json:"is_json"`
	Truncated  bool   `json:"truncated,omitempty"`
}

// Result holds the outcome of a single executed probe.
//
// StatusCode and LatencyMS are pointers so transport failures serialize
// as null rather than zero.
type Result struct {
	Name         string    `json:"name"`
	Outcome      Outcome   `json:"outcome"`
	StatusCode   *int      `json:"statusCode"`
	LatencyMS    *float64  `json:"latencyMs"`
	Body         *Body     `json:"responseBody,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Summary aggregates the result log by outcome.
type Summary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errored  int     `json:"errored"`
	PassRate float64 `json:"passRate"`
}

// Report is an ordered snapshot of the log plus its summary, ready for
// serialization.
type Report struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}
