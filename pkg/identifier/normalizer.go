package identifier

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidRule = errors.New("invalid identifier rule")

type RuleKind string

const (
	// RuleTruncate cuts the reference at the first occurrence of Token
	RuleTruncate RuleKind = "truncate"
	// RuleRemove deletes every occurrence of Token
	RuleRemove RuleKind = "remove"
	// RuleTrimSuffix strips Pattern from the end of the reference until it no longer matches
	RuleTrimSuffix RuleKind = "trim-suffix"
)

type Rule struct {
	Name    string   `yaml:"name"`
	Kind    RuleKind `yaml:"kind" validate:"required,oneof=truncate remove trim-suffix"`
	Token   string   `yaml:"token"`
	Pattern string   `yaml:"pattern"`
}

// DefaultRules turn a SUMO edge or lane reference such as "-30321431#2_0"
// into the OSM way id "30321431".
var DefaultRules = []Rule{
	{Name: "lane-separator", Kind: RuleTruncate, Token: "#"},
	{Name: "direction", Kind: RuleRemove, Token: "-"},
	{Name: "sub-index", Kind: RuleTrimSuffix, Pattern: `_\d+`},
}

type compiledRule struct {
	Rule
	suffix *regexp.Regexp
}

func (r compiledRule) apply(reference string) string {
	switch r.Kind {
	case RuleTruncate:
		if i := strings.Index(reference, r.Token); i >= 0 {
			return reference[:i]
		}
	case RuleRemove:
		return strings.ReplaceAll(reference, r.Token, "")
	case RuleTrimSuffix:
		for {
			trimmed := r.suffix.ReplaceAllString(reference, "")
			if trimmed == reference {
				break
			}
			reference = trimmed
		}
	}

	return reference
}

// Normalizer maps simulator references onto canonical map identifiers by
// running an ordered list of rules. It holds no mutable state and is safe for
// concurrent use.
type Normalizer struct {
	rules []compiledRule
}

func New(rules ...Rule) (*Normalizer, error) {
	if len(rules) == 0 {
		rules = DefaultRules
	}

	normalizer := &Normalizer{}
	for i, rule := range rules {
		compiled := compiledRule{Rule: rule}

		switch rule.Kind {
		case RuleTruncate, RuleRemove:
			if rule.Token == "" {
				return nil, fmt.Errorf("%w: rule %d (%s) needs a token", ErrInvalidRule, i, rule.Name)
			}
		case RuleTrimSuffix:
			if rule.Pattern == "" {
				return nil, fmt.Errorf("%w: rule %d (%s) needs a pattern", ErrInvalidRule, i, rule.Name)
			}

			suffix, err := regexp.Compile("(?:" + rule.Pattern + ")$")
			if err != nil {
				return nil, fmt.Errorf("%w: rule %d (%s): %s", ErrInvalidRule, i, rule.Name, err)
			}
			compiled.suffix = suffix
		default:
			return nil, fmt.Errorf("%w: rule %d has unknown kind %q", ErrInvalidRule, i, rule.Kind)
		}

		normalizer.rules = append(normalizer.rules, compiled)
	}

	return normalizer, nil
}

// Default returns a Normalizer running DefaultRules
func Default() *Normalizer {
	normalizer, err := New(DefaultRules...)
	if err != nil {
		panic(err)
	}

	return normalizer
}

// IsAbsent reports whether a raw reference carries no identifier at all
func IsAbsent(reference string) bool {
	trimmed := strings.TrimSpace(reference)
	return trimmed == "" || strings.EqualFold(trimmed, "none")
}

// Rules are re-run until the reference stops changing so that normalizing a
// canonical identifier is a no-op.
const maxPasses = 8

// Normalize returns the canonical identifier for a raw reference. The boolean
// is false when the reference is absent or nothing is left after the rules.
func (n *Normalizer) Normalize(reference string) (string, bool) {
	if IsAbsent(reference) {
		return "", false
	}

	canonical := strings.TrimSpace(reference)
	for pass := 0; pass < maxPasses; pass++ {
		next := canonical
		for _, rule := range n.rules {
			next = rule.apply(next)
		}
		next = strings.TrimSpace(next)

		if next == canonical {
			break
		}
		canonical = next
	}

	if IsAbsent(canonical) {
		return "", false
	}

	return canonical, true
}

// NormalizeAll normalizes an ordered list of references. Absent results are
// reported by their position in the input.
func (n *Normalizer) NormalizeAll(references []string) (canonical []string, absent []int) {
	for i, reference := range references {
		id, ok := n.Normalize(reference)
		if !ok {
			absent = append(absent, i)
			continue
		}
		canonical = append(canonical, id)
	}

	return canonical, absent
}

func (n *Normalizer) Rules() []Rule {
	rules := make([]Rule, len(n.rules))
	for i, rule := range n.rules {
		rules[i] = rule.Rule
	}

	return rules
}
