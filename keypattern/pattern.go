package keypattern

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholderRE matches a `{name}` template placeholder.
var placeholderRE = regexp.MustCompile(`\{(\w+)\}`)

// PatternSpec is one (template, label) entry from the pattern configuration
// file, before compilation.
type PatternSpec struct {
	Pattern string
	Label   Label
}

// compiledPattern is a PatternSpec compiled into an anchored, named-group
// regular expression.
type compiledPattern struct {
	re    *regexp.Regexp
	label Label
}

// Table is an ordered list of compiled patterns. The first matching
// template wins, per spec (load-order-sensitive by design: see DESIGN.md
// Open Question 1).
type Table struct {
	patterns []compiledPattern
}

// NewTable compiles specs into a Table, in order.
func NewTable(specs []PatternSpec) (*Table, error) {
	t := &Table{patterns: make([]compiledPattern, 0, len(specs))}

	for i, spec := range specs {
		re, err := compileTemplate(spec.Pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %d (%q): %w", i, spec.Pattern, err)
		}

		t.patterns = append(t.patterns, compiledPattern{re: re, label: spec.Label})
	}

	return t, nil
}

// compileTemplate turns a `{name}` template into an anchored, full-match
// regular expression. `{id}` and `{index}` bind to a digit sequence; every
// other placeholder binds to a word-character class. Literal `.`, `[`, `]`
// are escaped so they match themselves rather than acting as regex
// metacharacters.
func compileTemplate(template string) (*regexp.Regexp, error) {
	escaped := strings.NewReplacer(
		".", `\.`,
		"[", `\[`,
		"]", `\]`,
	).Replace(template)

	pattern := placeholderRE.ReplaceAllStringFunc(escaped, func(m string) string {
		name := placeholderRE.FindStringSubmatch(m)[1]

		switch strings.ToLower(name) {
		case "id", "index":
			return fmt.Sprintf(`(?P<%s>\d+)`, strings.ToLower(name))
		default:
			return fmt.Sprintf(`(?P<%s>[A-Za-z0-9_]+)`, name)
		}
	})

	return regexp.Compile("^" + pattern + "$")
}

// Classify matches key against the table in order and returns the bound
// components and winning label. Non-matching keys receive LabelPrimitive
// with only the entity component set to the raw key, per spec.
func (t *Table) Classify(key string) (Components, Label) {
	for _, cp := range t.patterns {
		m := cp.re.FindStringSubmatch(key)
		if m == nil {
			continue
		}

		comps := Components{}

		for i, name := range cp.re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}

			comps = comps.set(name, m[i])
		}

		return comps, cp.label
	}

	return Components{}.WithEntity(key), LabelPrimitive
}
