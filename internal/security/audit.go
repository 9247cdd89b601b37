// Package security builds an opinionated audit suite on top of the probe
// engine: a fixed catalog of request templates probing for common API
// weaknesses, plus policies that read the finished results.
package security

import (
	"fmt"
	"strings"
	"time"

	"github.com/hamed0406/apiprobe/internal/probe"
)

const (
	loginProbePrefix = "throttling: login attempt"
	loginAttempts    = 10
)

// sqlPayloads go into query parameters; a backend that reflects a SQL
// error signature in the response body is flagged by the injection
// check below.
var sqlPayloads = []string{
	"' OR '1'='1",
	"1; DROP TABLE users--",
	"' UNION SELECT NULL--",
}

var sqlErrorSignatures = []string{
	"sql syntax",
	"sqlite_",
	"psql:",
	"syntax error",
	"unterminated quoted string",
	"ORA-01756",
}

// AuditSuite returns the probe catalog for one target. Every probe is a
// plain probe.Spec; the runner stays unaware it is running an audit.
func AuditSuite(baseURL string, timeout time.Duration) []probe.Spec {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	specs := []probe.Spec{
		{
			Name:    "auth: resource without credentials",
			Method:  "GET",
			URL:     baseURL + "/users/1",
			Timeout: timeout,
		},
		{
			Name:    "auth: resource with empty bearer token",
			Method:  "GET",
			URL:     baseURL + "/users/1",
			Headers: map[string]string{"Authorization": "Bearer "},
			Timeout: timeout,
		},
		{
			Name:         "missing resource returns not-found",
			Method:       "GET",
			URL:          baseURL + "/users/99999",
			Timeout:      timeout,
			ExpectStatus: 404,
			// some APIs answer 200 + {} for missing rows; callers who
			// accept that run the suite variant with non_empty_object
		},
		{
			Name:    "input: oversized body accepted or rejected cleanly",
			Method:  "POST",
			URL:     baseURL + "/posts",
			Body:    map[string]any{"title": strings.Repeat("A", 64*1024)},
			Timeout: timeout,
		},
		{
			Name:    "verb tampering: DELETE on collection",
			Method:  "DELETE",
			URL:     baseURL + "/users",
			Timeout: timeout,
		},
		{
			Name:       "content: resource answers parseable JSON",
			Method:     "GET",
			URL:        baseURL + "/users/1",
			Timeout:    timeout,
			ExpectBody: func(b probe.Body) bool { return b.IsJSON },
		},
	}

	for i, payload := range sqlPayloads {
		p := payload
		specs = append(specs, probe.Spec{
			Name:    fmt.Sprintf("injection: sql payload %d in query", i+1),
			Method:  "GET",
			URL:     baseURL + "/users",
			Query:   map[string]string{"id": p},
			Timeout: timeout,
			ExpectBody: func(b probe.Body) bool {
				return !reflectsSQLError(b)
			},
		})
	}

	for i := 0; i < loginAttempts; i++ {
		specs = append(specs, probe.Spec{
			Name:    fmt.Sprintf("%s %d", loginProbePrefix, i+1),
			Method:  "POST",
			URL:     baseURL + "/login",
			Body:    map[string]any{"email": "audit@example.com", "password": "wrong-password"},
			Timeout: timeout,
		})
	}

	return specs
}

func reflectsSQLError(b probe.Body) bool {
	text := b.Raw
	if b.IsJSON {
		text = fmt.Sprint(b.Structured)
	}
	text = strings.ToLower(text)
	for _, sig := range sqlErrorSignatures {
		if strings.Contains(text, strings.ToLower(sig)) {
			return true
		}
	}
	return false
}
