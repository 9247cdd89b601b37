package suite

import (
	"fmt"
	"strings"

	"github.com/hamed0406/apiprobe/internal/probe"
)

// BodyCheck is one declarative assertion on a response body. The
// vocabulary is deliberately small; anything fancier belongs in code
// using probe.Spec directly.
//
// Checks:
//   - non_empty_object: body is a JSON object with at least one key.
//     This is how an API that answers "200 + {}" for a missing resource
//     (JSONPlaceholder does) gets treated as not-found by the caller.
//   - is_array: body is a JSON array.
//   - min_items: body is a JSON array with at least Min elements.
//   - required_fields: body is an object containing every name in Fields.
//   - field_equals: the value at the dotted Path stringifies to Value.
//   - contains: the raw or structured body text contains Value.
type BodyCheck struct {
	Check  string   `yaml:"check"`
	Fields []string `yaml:"fields"`
	Path   string   `yaml:"path"`
	Value  string   `yaml:"value"`
	Min    int      `yaml:"min"`
}

func (c BodyCheck) validate() error {
	switch c.Check {
	case "non_empty_object", "is_array":
	case "min_items":
		if c.Min < 1 {
			return fmt.Errorf("min_items needs min >= 1")
		}
	case "required_fields":
		if len(c.Fields) == 0 {
			return fmt.Errorf("required_fields needs fields")
		}
	case "field_equals":
		if c.Path == "" {
			return fmt.Errorf("field_equals needs path")
		}
	case "contains":
		if c.Value == "" {
			return fmt.Errorf("contains needs value")
		}
	default:
		return fmt.Errorf("unknown body check %q", c.Check)
	}
	return nil
}

// compileChecks folds the check list into one predicate; nil when there
// is nothing to assert. All checks must hold.
func compileChecks(checks []BodyCheck) func(probe.Body) bool {
	if len(checks) == 0 {
		return nil
	}
	return func(b probe.Body) bool {
		for _, c := range checks {
			if !c.eval(b) {
				return false
			}
		}
		return true
	}
}

func (c BodyCheck) eval(b probe.Body) bool {
	switch c.Check {
	case "non_empty_object":
		m, ok := b.Structured.(map[string]any)
		return ok && len(m) > 0
	case "is_array":
		_, ok := b.Structured.([]any)
		return ok
	case "min_items":
		arr, ok := b.Structured.([]any)
		return ok && len(arr) >= c.Min
	case "required_fields":
		m, ok := b.Structured.(map[string]any)
		if !ok {
			return false
		}
		for _, f := range c.Fields {
			if _, present := m[f]; !present {
				return false
			}
		}
		return true
	case "field_equals":
		v, ok := lookupPath(b.Structured, c.Path)
		return ok && fmt.Sprint(v) == c.Value
	case "contains":
		if b.IsJSON {
			return strings.Contains(fmt.Sprint(b.Structured), c.Value)
		}
		return strings.Contains(b.Raw, c.Value)
	}
	return false
}

// lookupPath walks a dotted path ("address.city") through nested JSON
// objects.
func lookupPath(v any, path string) (any, bool) {
	cur := v
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
