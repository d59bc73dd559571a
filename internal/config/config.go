// Package config loads and validates the substitution rule configuration.
//
// A configuration has three sections:
//
//	predef: named, reusable generator-expression-plus-policy definitions
//	xpaths: ordered mapping of path selectors to rule specifications
//	conf:   converter options (comments, multiple_xmls_in_file, cache_file)
//
// Files may be YAML or JSON (gopkg.in/yaml.v3 reads both) or CUE. A rule
// specification is either a bare generator expression string, a
// {gen_value, policy} mapping, or a {predef} reference to a named rule.
// References are resolved at load time; an unresolved reference is a
// configuration error and aborts the run before any document is touched.
package config

import (
	"fmt"
	"strings"
)

// Policy selects how often a rule's generator expression is evaluated.
type Policy int

const (
	// PolicyAlways evaluates the expression for every matched node.
	PolicyAlways Policy = iota
	// PolicyCached evaluates once per resolved expression and reuses the
	// result for identical inputs within a run.
	PolicyCached
)

func (p Policy) String() string {
	if p == PolicyCached {
		return "cached"
	}
	return "always"
}

func parsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "always":
		return PolicyAlways, nil
	case "cached":
		return PolicyCached, nil
	}
	return 0, fmt.Errorf("unknown policy %q", s)
}

// Rule is a generator expression plus evaluation policy. Name is set for
// predefined rules and empty for inline ones. Rules are immutable once
// loaded; a predefined rule is shared by every selector referencing it.
type Rule struct {
	Name   string
	Expr   string
	Policy Policy
}

// PathRule binds a path selector to a rule. The configuration holds path
// rules in declaration order; when several selectors hit the same node, the
// first one wins.
type PathRule struct {
	Selector string
	Rule     Rule
}

// ID returns the cache identity of the rule: predefined rules share one
// identity across all selectors referencing them, inline rules are keyed by
// their selector.
func (p PathRule) ID() string {
	if p.Rule.Name != "" {
		return "predef:" + p.Rule.Name
	}
	return "xpath:" + p.Selector
}

// Config is the validated configuration of one processing run.
type Config struct {
	Predefs map[string]Rule
	Paths   []PathRule

	// Comments makes the converter annotate every processed element with a
	// comment stating whether it was obfuscated.
	Comments bool
	// MultipleXMLsInFile allows an input file to contain several XML
	// documents, split on their declarations.
	MultipleXMLsInFile bool
	// CacheFile, when set, persists cached substitutions to a SQLite file so
	// they stay consistent across runs.
	CacheFile string
}

// Error is a configuration error. Configuration errors are fatal and abort
// the run before processing begins.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Configuration error codes.
const (
	ErrCodeNotFound         = "CONF_NOT_FOUND"
	ErrCodeParse            = "CONF_PARSE"
	ErrCodeBadRule          = "CONF_BAD_RULE"
	ErrCodeBadPolicy        = "CONF_BAD_POLICY"
	ErrCodeUnknownPredef    = "CONF_UNKNOWN_PREDEF"
	ErrCodeBadExpression    = "CONF_BAD_EXPRESSION"
	ErrCodeBadSelector      = "CONF_BAD_SELECTOR"
	ErrCodeUnknownGenerator = "CONF_UNKNOWN_GENERATOR"
)

func errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
