// Package location remaps schemaLocation values found in import and
// include directives onto local paths before the loader opens them.
package location

import (
	"fmt"
	"io/fs"
	"regexp"
)

// Rule maps a schemaLocation onto a replacement path. Exact rules
// compare the whole string; pattern rules are anchored regular
// expressions whose replacement may reference capture groups ($1,
// ${name}).
type Rule struct {
	From    string
	To      string
	Pattern bool

	re *regexp.Regexp
}

// Exact creates an exact-match rule.
func Exact(from, to string) Rule {
	return Rule{From: from, To: to}
}

// Pattern creates a pattern rule. The expression is compiled on first
// use by a Resolver; an invalid expression surfaces from NewResolver.
func Pattern(expr, to string) Rule {
	return Rule{From: expr, To: to, Pattern: true}
}

// NotFoundError reports a rule that matched but whose mapped target
// does not exist. This is a configuration error, not a fall-through.
type NotFoundError struct {
	Location string
	Mapped   string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("mapped schema location not found: %q -> %q", e.Location, e.Mapped)
}

// Resolver applies an ordered rule list to raw schema locations.
// Rules are tried in configuration order and the first match wins,
// regardless of whether it is exact or pattern-based. Resolver state
// is scoped to one parse invocation; it is never shared globally.
type Resolver struct {
	rules []Rule
	fsys  fs.FS
}

// NewResolver compiles the rule list against fsys. fsys may be nil,
// which disables the mapped-target existence check.
func NewResolver(fsys fs.FS, rules []Rule) (*Resolver, error) {
	compiled := make([]Rule, len(rules))
	for i, rule := range rules {
		if rule.From == "" {
			return nil, fmt.Errorf("location rule %d: empty from", i)
		}
		if rule.To == "" {
			return nil, fmt.Errorf("location rule %d: empty to", i)
		}
		if rule.Pattern {
			re, err := regexp.Compile("^(?:" + rule.From + ")$")
			if err != nil {
				return nil, fmt.Errorf("location rule %d: compile pattern %q: %w", i, rule.From, err)
			}
			rule.re = re
		}
		compiled[i] = rule
	}
	return &Resolver{rules: compiled, fsys: fsys}, nil
}

// Resolve maps raw onto its configured target. The second return
// reports whether any rule matched; when none does, raw is returned
// unchanged and the caller resolves it relative to the importing
// schema or treats it as remote. A matching rule whose target is
// missing fails with *NotFoundError rather than falling through.
func (r *Resolver) Resolve(raw string) (string, bool, error) {
	for _, rule := range r.rules {
		mapped, ok := rule.apply(raw)
		if !ok {
			continue
		}
		if r.fsys != nil {
			if _, err := fs.Stat(r.fsys, mapped); err != nil {
				return "", true, &NotFoundError{Location: raw, Mapped: mapped}
			}
		}
		return mapped, true, nil
	}
	return raw, false, nil
}

// Rules returns the configured rules in order.
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

func (rule Rule) apply(raw string) (string, bool) {
	if !rule.Pattern {
		if raw == rule.From {
			return rule.To, true
		}
		return "", false
	}
	match := rule.re.FindStringSubmatchIndex(raw)
	if match == nil {
		return "", false
	}
	return string(rule.re.ExpandString(nil, rule.To, raw, match)), true
}
