// Package suite loads declarative probe definitions from YAML and
// compiles them into executable probe specs.
package suite

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/apiprobe/internal/probe"
)

const defaultTimeoutMS = 10000

// Suite is one YAML file worth of probes against a common base URL.
type Suite struct {
	Name      string     `yaml:"name"`
	BaseURL   string     `yaml:"base_url"`
	TimeoutMS int        `yaml:"timeout_ms"`
	Probes    []ProbeDef `yaml:"probes"`
}

// ProbeDef is the declarative form of a single probe. Path is joined to
// the suite's base URL; URL, when set, wins over Path.
type ProbeDef struct {
	Name         string            `yaml:"name"`
	Method       string            `yaml:"method"`
	Path         string            `yaml:"path"`
	URL          string            `yaml:"url"`
	Headers      map[string]string `yaml:"headers"`
	Query        map[string]string `yaml:"query"`
	Body         any               `yaml:"body"`
	TimeoutMS    int               `yaml:"timeout_ms"`
	ExpectStatus int               `yaml:"expect_status"`
	ExpectBody   []BodyCheck       `yaml:"expect_body"`
}

// Load reads and validates a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}
	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate applies defaults and rejects definitions the runner would
// refuse anyway, so a bad file fails at load time, not mid-run.
func (s *Suite) Validate() error {
	if s.TimeoutMS <= 0 {
		s.TimeoutMS = defaultTimeoutMS
	}
	if len(s.Probes) == 0 {
		return fmt.Errorf("suite %q has no probes", s.Name)
	}
	for i := range s.Probes {
		p := &s.Probes[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("probe %d", i+1)
		}
		if p.Method == "" {
			p.Method = "GET"
		}
		p.Method = strings.ToUpper(p.Method)
		if p.TimeoutMS <= 0 {
			p.TimeoutMS = s.TimeoutMS
		}
		if p.URL == "" && p.Path == "" {
			return fmt.Errorf("probe %q: needs url or path", p.Name)
		}
		for _, c := range p.ExpectBody {
			if err := c.validate(); err != nil {
				return fmt.Errorf("probe %q: %w", p.Name, err)
			}
		}
	}
	return nil
}

// Build compiles the suite into specs for the runner. baseURL, when
// non-empty, overrides the suite's own base (the CLI's --base-url flag).
func (s *Suite) Build(baseURL string) ([]probe.Spec, error) {
	base := s.BaseURL
	if baseURL != "" {
		base = baseURL
	}

	specs := make([]probe.Spec, 0, len(s.Probes))
	for _, p := range s.Probes {
		target := p.URL
		if target == "" && base == "" {
			return nil, fmt.Errorf("probe %q: path %q needs a base URL", p.Name, p.Path)
		}
		if target == "" {
			joined, err := url.JoinPath(base, p.Path)
			if err != nil {
				return nil, fmt.Errorf("probe %q: join %q + %q: %w", p.Name, base, p.Path, err)
			}
			target = joined
		}
		specs = append(specs, probe.Spec{
			Name:         p.Name,
			Method:       p.Method,
			URL:          target,
			Headers:      p.Headers,
			Query:        p.Query,
			Body:         p.Body,
			Timeout:      time.Duration(p.TimeoutMS) * time.Millisecond,
			ExpectStatus: p.ExpectStatus,
			ExpectBody:   compileChecks(p.ExpectBody),
		})
	}
	return specs, nil
}
