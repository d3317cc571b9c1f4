// Package sensors derives boolean world facts from a raw blackboard of
// values using expr rules such as "hunger > 50".
package sensors

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"goapforge/internal/goap"
)

// Rule derives Fact from the blackboard whenever When evaluates to true.
type Rule struct {
	Fact string
	When string
}

type compiled struct {
	rule    Rule
	program *vm.Program
}

// Set is an ordered collection of compiled rules.
type Set struct {
	rules []compiled
}

// Compile compiles every rule. It fails on an empty fact name, an invalid
// expression, or a fact derived by more than one rule.
func Compile(rules []Rule) (*Set, error) {
	set := &Set{rules: make([]compiled, 0, len(rules))}
	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		fact := strings.TrimSpace(r.Fact)
		if fact == "" {
			return nil, fmt.Errorf("sensor %d: fact is required", i)
		}
		if _, dup := seen[fact]; dup {
			return nil, fmt.Errorf("sensor %d: fact %q already has a sensor", i, fact)
		}
		seen[fact] = struct{}{}

		if strings.TrimSpace(r.When) == "" {
			return nil, fmt.Errorf("sensor %q: when expression is required", fact)
		}
		program, err := expr.Compile(r.When,
			expr.AsBool(),
			expr.AllowUndefinedVariables(),
		)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: compile %q: %w", fact, r.When, err)
		}
		set.rules = append(set.rules, compiled{rule: Rule{Fact: fact, When: r.When}, program: program})
	}
	return set, nil
}

// MustCompile is Compile for rules known to be valid. It panics on error.
func MustCompile(rules []Rule) *Set {
	set, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return set
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Facts returns the derived fact names in rule order.
func (s *Set) Facts() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.rules))
	for _, c := range s.rules {
		out = append(out, c.rule.Fact)
	}
	return out
}

// Evaluate runs every rule against blackboard and returns the derived facts
// in rule order.
func (s *Set) Evaluate(blackboard map[string]any) ([]goap.Fact, error) {
	if s == nil {
		return nil, nil
	}
	env := blackboard
	if env == nil {
		env = map[string]any{}
	}
	out := make([]goap.Fact, 0, len(s.rules))
	for _, c := range s.rules {
		result, err := expr.Run(c.program, env)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: %w", c.rule.Fact, err)
		}
		value, ok := result.(bool)
		if !ok {
			return nil, fmt.Errorf("sensor %q: expression returned %T, want bool", c.rule.Fact, result)
		}
		out = append(out, goap.Fact{Name: c.rule.Fact, Value: value})
	}
	return out, nil
}
