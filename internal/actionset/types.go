package actionset

import (
	"fmt"

	"goapforge/internal/goap"
	"goapforge/internal/sensors"
)

// ActionSpec is a validated action as declared in a domain file.
type ActionSpec struct {
	Name          string
	Cost          float32
	Preconditions map[string]bool
	Effects       map[string]bool
}

// GoalSpec is a validated goal as declared in a domain file.
type GoalSpec struct {
	Name     string
	Priority float32
	Desired  map[string]bool
}

// Domain is a loaded domain document with its actions and goals resolved
// against a domain-owned Interner.
//
// Fact ids are assigned to the declared vocabulary first, in declaration
// order, and then to every other referenced fact in lexical order, so two
// loads of the same file agree on ids.
type Domain struct {
	Name        string
	Facts       []string
	SensorRules []sensors.Rule
	ActionSpecs []ActionSpec
	GoalSpecs   []GoalSpec
	Source      string

	interner *goap.Interner
	sensors  *sensors.Set
	actions  []goap.Action
	goals    []goap.Goal
}

// Interner returns the domain's symbol table.
func (d *Domain) Interner() *goap.Interner {
	return d.interner
}

// Sensors returns the compiled sensor rules.
func (d *Domain) Sensors() *sensors.Set {
	return d.sensors
}

// Actions returns a copy of the domain's actions in declaration order.
func (d *Domain) Actions() []goap.Action {
	return append([]goap.Action(nil), d.actions...)
}

// Goals returns the domain's goals in declaration order.
func (d *Domain) Goals() []goap.Goal {
	return append([]goap.Goal(nil), d.goals...)
}

// Goal returns the goal with the given name.
func (d *Domain) Goal(name string) (goap.Goal, bool) {
	for _, g := range d.goals {
		if g.Name == name {
			return g, true
		}
	}
	return goap.Goal{}, false
}

// Action returns the action with the given name.
func (d *Domain) Action(name string) (goap.Action, bool) {
	for _, a := range d.actions {
		if a.Name == name {
			return a, true
		}
	}
	return goap.Action{}, false
}

// declares reports whether fact is part of the declared vocabulary. Domains
// without a vocabulary accept every fact.
func (d *Domain) declares(fact string) bool {
	if len(d.Facts) == 0 {
		return true
	}
	for _, f := range d.Facts {
		if f == fact {
			return true
		}
	}
	return false
}

// Scenario is a validated scenario document: a domain, a goal, and the
// start conditions to plan from.
type Scenario struct {
	Name          string
	Domain        string
	Goal          string
	State         map[string]bool
	Blackboard    map[string]any
	FailActions   map[string]int
	MaxIterations int
	Source        string
}

// StartState combines the scenario's literal facts with the facts derived by
// the domain's sensors from the blackboard. Literal facts win on conflict.
//
// Facts the domain has not seen yet are interned into the domain's Interner.
func (s Scenario) StartState(d *Domain) (goap.WorldState, error) {
	derived, err := d.sensors.Evaluate(s.Blackboard)
	if err != nil {
		return goap.WorldState{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	facts := make(map[string]bool, len(derived)+len(s.State))
	for _, f := range derived {
		facts[f.Name] = f.Value
	}
	for name, value := range s.State {
		facts[name] = value
	}
	return d.interner.StateFromMap(facts), nil
}
