package config

import (
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/mtoporowski/stovokor/internal/gen"
)

// rawRule is an unvalidated rule specification as it appears in a file.
type rawRule struct {
	Expr   string
	Policy string
	Predef string
}

// rawEntry preserves the declaration order of mapping sections.
type rawEntry struct {
	Key  string
	Rule rawRule
}

type rawConfig struct {
	Predef []rawEntry
	XPaths []rawEntry
	Conf   map[string]any
}

// Load reads, merges and validates a configuration. The file format follows
// its extension: .cue is compiled as CUE, everything else is read as YAML
// (which covers JSON). A non-empty override is parsed the same way as YAML
// and its predef and conf sections are merged over the file's.
func Load(path, override string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errorf(ErrCodeNotFound, "reading configuration: %v", err)
	}

	var raw rawConfig
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		raw, err = parseCUE(data)
	} else {
		raw, err = parseYAML(data)
	}
	if err != nil {
		return nil, err
	}

	if override != "" {
		over, err := parseYAML([]byte(override))
		if err != nil {
			return nil, err
		}
		raw.merge(over)
	}

	return build(raw)
}

// merge overlays the predef and conf sections of an override. Path rules are
// not overridable: the selector order is part of the file's contract.
func (r *rawConfig) merge(over rawConfig) {
	for _, e := range over.Predef {
		replaced := false
		for i := range r.Predef {
			if r.Predef[i].Key == e.Key {
				r.Predef[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			r.Predef = append(r.Predef, e)
		}
	}
	if len(over.Conf) > 0 && r.Conf == nil {
		r.Conf = make(map[string]any)
	}
	for k, v := range over.Conf {
		r.Conf[k] = v
	}
}

func parseYAML(data []byte) (rawConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return rawConfig{}, errorf(ErrCodeParse, "parsing configuration: %v", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return rawConfig{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return rawConfig{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return rawConfig{}, errorf(ErrCodeParse, "top level of the configuration must be a mapping")
	}

	var raw rawConfig
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "predef":
			entries, err := parseRuleMapping(val, "predef")
			if err != nil {
				return rawConfig{}, err
			}
			raw.Predef = entries
		case "xpaths":
			entries, err := parseRuleMapping(val, "xpaths")
			if err != nil {
				return rawConfig{}, err
			}
			raw.XPaths = entries
		case "conf":
			if err := val.Decode(&raw.Conf); err != nil {
				return rawConfig{}, errorf(ErrCodeParse, "parsing conf section: %v", err)
			}
		}
	}
	return raw, nil
}

// parseRuleMapping walks a YAML mapping node pairwise, keeping declaration
// order. A plain yaml map would lose it.
func parseRuleMapping(n *yaml.Node, section string) ([]rawEntry, error) {
	if n.Kind != yaml.MappingNode {
		return nil, errorf(ErrCodeParse, "section %q must be a mapping", section)
	}
	entries := make([]rawEntry, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		rule, err := parseRuleNode(val, key.Value)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rawEntry{Key: key.Value, Rule: rule})
	}
	return entries, nil
}

func parseRuleNode(n *yaml.Node, key string) (rawRule, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return rawRule{Expr: n.Value}, nil
	case yaml.MappingNode:
		var fields struct {
			GenValue string `yaml:"gen_value"`
			Policy   string `yaml:"policy"`
			Predef   string `yaml:"predef"`
		}
		if err := n.Decode(&fields); err != nil {
			return rawRule{}, errorf(ErrCodeParse, "rule %q: %v", key, err)
		}
		return rawRule{Expr: fields.GenValue, Policy: fields.Policy, Predef: fields.Predef}, nil
	}
	return rawRule{}, errorf(ErrCodeBadRule, "rule %q must be a string or a mapping", key)
}

func parseCUE(data []byte) (rawConfig, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(data)
	if err := value.Err(); err != nil {
		return rawConfig{}, errorf(ErrCodeParse, "compiling CUE configuration: %v", err)
	}

	var raw rawConfig
	var err error
	if raw.Predef, err = parseCUERules(value, "predef"); err != nil {
		return rawConfig{}, err
	}
	if raw.XPaths, err = parseCUERules(value, "xpaths"); err != nil {
		return rawConfig{}, err
	}

	confVal := value.LookupPath(cue.ParsePath("conf"))
	if confVal.Exists() {
		if err := confVal.Decode(&raw.Conf); err != nil {
			return rawConfig{}, errorf(ErrCodeParse, "parsing conf section: %v", err)
		}
	}
	return raw, nil
}

func parseCUERules(value cue.Value, section string) ([]rawEntry, error) {
	sectionVal := value.LookupPath(cue.ParsePath(section))
	if !sectionVal.Exists() {
		return nil, nil
	}
	iter, err := sectionVal.Fields()
	if err != nil {
		return nil, errorf(ErrCodeParse, "iterating %s section: %v", section, err)
	}
	var entries []rawEntry
	for iter.Next() {
		key := iter.Label()
		rule, err := parseCUERule(iter.Value(), key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, rawEntry{Key: key, Rule: rule})
	}
	return entries, nil
}

func parseCUERule(v cue.Value, key string) (rawRule, error) {
	if v.Kind() == cue.StringKind {
		expr, err := v.String()
		if err != nil {
			return rawRule{}, errorf(ErrCodeParse, "rule %q: %v", key, err)
		}
		return rawRule{Expr: expr}, nil
	}
	if v.Kind() != cue.StructKind {
		return rawRule{}, errorf(ErrCodeBadRule, "rule %q must be a string or a struct", key)
	}
	var rule rawRule
	fields := map[string]*string{
		"gen_value": &rule.Expr,
		"policy":    &rule.Policy,
		"predef":    &rule.Predef,
	}
	for name, dst := range fields {
		fv := v.LookupPath(cue.ParsePath(name))
		if !fv.Exists() {
			continue
		}
		s, err := fv.String()
		if err != nil {
			return rawRule{}, errorf(ErrCodeParse, "rule %q field %s: %v", key, name, err)
		}
		*dst = s
	}
	return rule, nil
}

func build(raw rawConfig) (*Config, error) {
	cfg := &Config{Predefs: make(map[string]Rule, len(raw.Predef))}

	for _, e := range raw.Predef {
		rule, err := buildRule(e, nil)
		if err != nil {
			return nil, err
		}
		rule.Name = e.Key
		cfg.Predefs[e.Key] = rule
	}

	for _, e := range raw.XPaths {
		if e.Key == "" {
			return nil, errorf(ErrCodeBadRule, "empty path selector")
		}
		rule, err := buildRule(e, cfg.Predefs)
		if err != nil {
			return nil, err
		}
		cfg.Paths = append(cfg.Paths, PathRule{Selector: e.Key, Rule: rule})
	}

	if err := applyConf(cfg, raw.Conf); err != nil {
		return nil, err
	}

	for _, rule := range cfg.Predefs {
		if err := validateExpr(rule.Expr); err != nil {
			return nil, err
		}
	}
	for _, pr := range cfg.Paths {
		if pr.Rule.Name != "" {
			continue // predefined rules are validated once above
		}
		if err := validateExpr(pr.Rule.Expr); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func buildRule(e rawEntry, predefs map[string]Rule) (Rule, error) {
	if e.Rule.Predef != "" {
		if predefs == nil {
			return Rule{}, errorf(ErrCodeBadRule, "rule %q: predef references are not allowed inside predef", e.Key)
		}
		rule, ok := predefs[e.Rule.Predef]
		if !ok {
			return Rule{}, errorf(ErrCodeUnknownPredef, "rule %q: invalid predef key %q", e.Key, e.Rule.Predef)
		}
		return rule, nil
	}
	if e.Rule.Expr == "" {
		return Rule{}, errorf(ErrCodeBadRule, "rule %q: gen_value is required", e.Key)
	}
	policy, err := parsePolicy(e.Rule.Policy)
	if err != nil {
		return Rule{}, errorf(ErrCodeBadPolicy, "rule %q: %v", e.Key, err)
	}
	return Rule{Expr: e.Rule.Expr, Policy: policy}, nil
}

func applyConf(cfg *Config, conf map[string]any) error {
	for key, val := range conf {
		switch key {
		case "comments":
			b, ok := val.(bool)
			if !ok {
				return errorf(ErrCodeParse, "conf.comments must be a boolean")
			}
			cfg.Comments = b
		case "multiple_xmls_in_file":
			b, ok := val.(bool)
			if !ok {
				return errorf(ErrCodeParse, "conf.multiple_xmls_in_file must be a boolean")
			}
			cfg.MultipleXMLsInFile = b
		case "cache_file":
			s, ok := val.(string)
			if !ok {
				return errorf(ErrCodeParse, "conf.cache_file must be a string")
			}
			cfg.CacheFile = s
		}
	}
	return nil
}

// validateExpr probes an expression with placeholder text so that syntax
// errors and unknown generator names surface at load time. Argument-level
// errors depend on the node text and stay per-node.
func validateExpr(expr string) error {
	args, err := gen.Split(gen.Expand(expr, "probe"))
	if err != nil {
		return errorf(ErrCodeBadExpression, "expression %q: %v", expr, err)
	}
	if len(args) == 0 {
		return errorf(ErrCodeBadExpression, "empty generator expression")
	}
	if !gen.Known(args[0]) {
		return errorf(ErrCodeUnknownGenerator, "unknown generator %q in expression %q", args[0], expr)
	}
	return nil
}
