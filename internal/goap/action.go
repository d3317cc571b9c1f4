package goap

// DefaultActionCost is the cost of an action built with NewAction.
const DefaultActionCost float32 = 1.0

// Action is a named transform from states that satisfy Preconditions to
// states with Effects applied. Cost is the A* edge weight and must not be
// negative.
type Action struct {
	Name          string
	Cost          float32
	Preconditions WorldState
	Effects       WorldState
}

// NewAction returns an action with no preconditions, no effects and the
// default cost.
func NewAction(name string) Action {
	return Action{Name: name, Cost: DefaultActionCost}
}

// WithCost returns a copy of a with the given cost.
func (a Action) WithCost(cost float32) Action {
	a.Cost = cost
	return a
}

// WithPrecondition returns a copy of a that also requires id == value.
func (a Action) WithPrecondition(id FactID, value bool) Action {
	a.Preconditions = a.Preconditions.Clone()
	a.Preconditions.Set(id, value)
	return a
}

// WithEffect returns a copy of a that also sets id to value.
func (a Action) WithEffect(id FactID, value bool) Action {
	a.Effects = a.Effects.Clone()
	a.Effects.Set(id, value)
	return a
}

// CanApply reports whether state satisfies the action's preconditions.
func (a Action) CanApply(state WorldState) bool {
	return state.Satisfies(a.Preconditions)
}

// Apply returns a copy of state with the action's effects applied.
// state itself is never modified.
func (a Action) Apply(state WorldState) WorldState {
	next := state.Clone()
	next.Apply(a.Effects)
	return next
}

// ActionNames returns the names of actions in order.
func ActionNames(actions []Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name
	}
	return names
}

// TotalCost sums the cost of actions.
func TotalCost(actions []Action) float32 {
	var total float32
	for _, a := range actions {
		total += a.Cost
	}
	return total
}
