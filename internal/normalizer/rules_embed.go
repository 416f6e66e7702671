package normalizer

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/abbreviations.yaml
var abbreviationsYAML []byte

// Rule maps an abbreviation to the word it stands for.
type Rule struct {
	Abbr string `yaml:"abbr"`
	Word string `yaml:"word"`
}

// RulesConfig holds the abbreviation rules loaded from the embedded YAML.
type RulesConfig struct {
	Titles   []Rule `yaml:"titles"`
	Suffixes []Rule `yaml:"suffixes"`
}

// LoadRulesConfig parses the embedded abbreviation rules.
func LoadRulesConfig() (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(abbreviationsYAML, config); err != nil {
		return nil, fmt.Errorf("parse abbreviation rules: %w", err)
	}
	return config, nil
}

// compile turns the rules into replacements. A title must start a word and
// end with a period; the spelled-out word is followed by a single space.
func (rc *RulesConfig) compile() ([]abbreviation, error) {
	out := make([]abbreviation, 0, len(rc.Titles)+len(rc.Suffixes))
	for _, r := range rc.Titles {
		abbr := strings.TrimSuffix(strings.TrimSpace(r.Abbr), ".")
		if abbr == "" || r.Word == "" {
			return nil, fmt.Errorf("incomplete title rule %+v", r)
		}
		re, err := regexp.Compile(`(?i)(^|[^\p{L}])` + regexp.QuoteMeta(abbr) + `\.\s*`)
		if err != nil {
			return nil, err
		}
		out = append(out, abbreviation{re: re, out: "${1}" + r.Word + " "})
	}
	for _, r := range rc.Suffixes {
		if strings.TrimSpace(r.Abbr) == "" || r.Word == "" {
			return nil, fmt.Errorf("incomplete suffix rule %+v", r)
		}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(r.Abbr)))
		if err != nil {
			return nil, err
		}
		out = append(out, abbreviation{re: re, out: r.Word})
	}
	return out, nil
}

func mustLoadAbbreviations() []abbreviation {
	rc, err := LoadRulesConfig()
	if err != nil {
		panic(err)
	}
	abbrs, err := rc.compile()
	if err != nil {
		panic(err)
	}
	return abbrs
}
