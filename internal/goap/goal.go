package goap

// Goal is a desired state. Priority is for callers choosing between goals;
// the planner ignores it.
type Goal struct {
	Name     string
	Desired  WorldState
	Priority float32
}

// NewGoal returns a goal with zero priority.
func NewGoal(name string, desired WorldState) Goal {
	return Goal{Name: name, Desired: desired}
}

// WithPriority returns a copy of g with the given priority.
func (g Goal) WithPriority(priority float32) Goal {
	g.Priority = priority
	return g
}

// IsSatisfied reports whether state satisfies the desired state.
func (g Goal) IsSatisfied(state WorldState) bool {
	return state.Satisfies(g.Desired)
}
