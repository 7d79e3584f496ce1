package useragent

import (
	_ "embed"
	"errors"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

type alias struct {
	Token string `yaml:"token"`
	Name  string `yaml:"name"`
}

// ruleSet holds the fixed vocabulary tables used by the parser.
type ruleSet struct {
	PlatformPriority []string          `yaml:"platform_priority"`
	PlatformAliases  map[string]string `yaml:"platform_aliases"`
	BrowserAliases   []alias           `yaml:"browser_aliases"`
	NamedBrowsers    []string          `yaml:"named_browsers"`
	PuffinFlags      map[string]string `yaml:"puffin_flags"`
	Bots             []string          `yaml:"bots"`
}

var rules = mustLoadRules(rulesYAML)

func loadRules(data []byte) (ruleSet, error) {
	var rs ruleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return ruleSet{}, errors.Join(ErrInvalidRules, err)
	}
	if len(rs.PlatformPriority) == 0 || len(rs.BrowserAliases) == 0 || len(rs.NamedBrowsers) == 0 {
		return ruleSet{}, ErrInvalidRules
	}
	return rs, nil
}

func mustLoadRules(data []byte) ruleSet {
	rs, err := loadRules(data)
	if err != nil {
		panic(err)
	}
	return rs
}
