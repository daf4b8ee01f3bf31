package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"kvschema.dev/kvschema/keypattern"
)

// PatternFile is the decoded shape of the YAML pattern configuration:
// `{patterns: [{pattern: "<template>", label: "<Prop|AggProp|Arr|ArrProp>"}, …]}`.
type PatternFile struct {
	Patterns []struct {
		Pattern string `yaml:"pattern"`
		Label   string `yaml:"label"`
	} `yaml:"patterns"`
}

// LoadPatternTable reads path as YAML, decodes it into a [PatternFile], and
// compiles it into a [keypattern.Table].
func LoadPatternTable(path string) (*keypattern.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}

	var pf PatternFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrConfig, path, err)
	}

	specs := make([]keypattern.PatternSpec, len(pf.Patterns))
	for i, p := range pf.Patterns {
		specs[i] = keypattern.PatternSpec{Pattern: p.Pattern, Label: keypattern.Label(p.Label)}
	}

	table, err := keypattern.NewTable(specs)
	if err != nil {
		return nil, fmt.Errorf("%w: compiling %s: %v", ErrConfig, path, err)
	}

	return table, nil
}
