package actionset

import (
	"fmt"
)

// Severity ranks a lint issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a single lint finding.
type Issue struct {
	Severity   Severity `json:"severity"`
	Field      string   `json:"field"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
	if i.Suggestion != "" {
		s += " (" + i.Suggestion + ")"
	}
	return s
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Lint reports design problems in a valid domain: goals nothing can reach,
// preconditions nothing can establish, and suspicious priorities or costs.
// Issues are ordered by goal, then by action, following declaration order.
func Lint(d *Domain) []Issue {
	produced := make(map[string]map[bool]struct{})
	for _, a := range d.ActionSpecs {
		for fact, value := range a.Effects {
			if produced[fact] == nil {
				produced[fact] = make(map[bool]struct{}, 2)
			}
			produced[fact][value] = struct{}{}
		}
	}
	derived := make(map[string]struct{}, len(d.SensorRules))
	for _, r := range d.SensorRules {
		derived[r.Fact] = struct{}{}
	}

	var issues []Issue
	for i, g := range d.GoalSpecs {
		path := fmt.Sprintf("goals[%d]", i)
		switch {
		case g.Priority < 0:
			issues = append(issues, Issue{
				Severity:   SeverityError,
				Field:      path + ".priority",
				Message:    fmt.Sprintf("goal %s has negative priority %g", g.Name, g.Priority),
				Suggestion: "use a priority between 0 and 10",
			})
		case g.Priority == 0:
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Field:      path + ".priority",
				Message:    fmt.Sprintf("goal %s has zero priority and will never be preferred", g.Name),
				Suggestion: "set a positive priority",
			})
		case g.Priority > 10:
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Field:      path + ".priority",
				Message:    fmt.Sprintf("goal %s has unusually high priority %g", g.Name, g.Priority),
				Suggestion: "keep priorities between 0 and 10",
			})
		}
		for _, fact := range sortedKeys(g.Desired) {
			want := g.Desired[fact]
			if _, ok := produced[fact][want]; ok {
				continue
			}
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Field:      fmt.Sprintf("%s.desired.%s", path, fact),
				Message:    fmt.Sprintf("no action sets %s=%t", fact, want),
				Suggestion: fmt.Sprintf("add an action with effect %s: %t or make sure the start state provides it", fact, want),
			})
		}
	}

	for i, a := range d.ActionSpecs {
		path := fmt.Sprintf("actions[%d]", i)
		for _, fact := range sortedKeys(a.Preconditions) {
			if _, ok := produced[fact]; ok {
				continue
			}
			if _, ok := derived[fact]; ok {
				continue
			}
			issues = append(issues, Issue{
				Severity:   SeverityWarning,
				Field:      fmt.Sprintf("%s.preconditions.%s", path, fact),
				Message:    fmt.Sprintf("action %s requires %s but no action or sensor provides it", a.Name, fact),
				Suggestion: "provide the fact in every scenario state or add a sensor for it",
			})
		}
		if a.Cost == 0 {
			issues = append(issues, Issue{
				Severity:   SeverityInfo,
				Field:      path + ".cost",
				Message:    fmt.Sprintf("action %s has zero cost", a.Name),
				Suggestion: "zero-cost actions add nothing to plan cost, so ties between plans become likely",
			})
		}
	}
	return issues
}
