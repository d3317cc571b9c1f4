package goap

import (
	"log/slog"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/trees/binaryheap"
)

// DefaultMaxIterations bounds the number of node expansions per search.
const DefaultMaxIterations = 1000

// Outcome classifies how a search ended.
type Outcome int

const (
	// OutcomeSolved means a plan reaching the goal was found.
	OutcomeSolved Outcome = iota
	// OutcomeExhausted means every reachable state was expanded without
	// reaching the goal: no plan exists.
	OutcomeExhausted
	// OutcomeCapExceeded means the iteration cap stopped the search; a plan
	// may or may not exist.
	OutcomeCapExceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSolved:
		return "solved"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeCapExceeded:
		return "cap_exceeded"
	default:
		return "unknown"
	}
}

// Result is the detailed outcome of a search.
type Result struct {
	Outcome Outcome
	// Actions is the plan in execution order; nil unless Outcome is
	// OutcomeSolved. An already satisfied goal yields an empty, non-nil plan.
	Actions []Action
	// Cost is the summed cost of Actions.
	Cost float32
	// Iterations counts node expansions.
	Iterations int
	// Nodes counts frontier entries created, including the root.
	Nodes int
}

// Solved reports whether the search produced a plan.
func (r Result) Solved() bool {
	return r.Outcome == OutcomeSolved
}

// Planner runs A* over action applications. A Planner holds only
// configuration and is safe to share between goroutines.
type Planner struct {
	maxIterations int
	logger        *slog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithMaxIterations sets the expansion cap. Values <= 0 select
// DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(p *Planner) {
		if n <= 0 {
			n = DefaultMaxIterations
		}
		p.maxIterations = n
	}
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// NewPlanner returns a Planner with DefaultMaxIterations.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{maxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxIterations returns the configured expansion cap.
func (p *Planner) MaxIterations() int {
	return p.maxIterations
}

// Plan returns the cheapest action sequence leading from start to a state
// that satisfies goal. The boolean is false when no plan was found, either
// because none exists or because the iteration cap was reached; use Search
// to tell the two apart.
func (p *Planner) Plan(start WorldState, goal Goal, actions []Action) ([]Action, bool) {
	res := p.Search(start, goal, actions)
	if !res.Solved() {
		return nil, false
	}
	return res.Actions, true
}

// Search runs A* and reports the detailed outcome.
//
// Repeated searches over identical input return identical plans: frontier
// ties are broken by depth, then action name, then insertion order.
func (p *Planner) Search(start WorldState, goal Goal, actions []Action) Result {
	if goal.IsSatisfied(start) {
		return Result{Outcome: OutcomeSolved, Actions: []Action{}}
	}

	ar := &arena{actions: actions}
	open := binaryheap.NewWith(ar.compare)
	closed := treeset.NewWith(compareStates)

	open.Push(ar.push(start, -1, -1, 0, start.DistanceTo(goal.Desired), 0))

	iterations := 0
	for !open.Empty() {
		v, _ := open.Pop()
		idx := v.(int)
		cur := ar.nodes[idx]

		if goal.IsSatisfied(cur.state) {
			plan := ar.path(idx)
			res := Result{
				Outcome:    OutcomeSolved,
				Actions:    plan,
				Cost:       cur.g,
				Iterations: iterations,
				Nodes:      len(ar.nodes),
			}
			p.log(goal, res)
			return res
		}
		if closed.Contains(cur.state) {
			continue
		}
		closed.Add(cur.state)

		for ai := range actions {
			act := &actions[ai]
			if !act.CanApply(cur.state) {
				continue
			}
			next := act.Apply(cur.state)
			if closed.Contains(next) {
				continue
			}
			open.Push(ar.push(next, idx, ai, cur.g+act.Cost, next.DistanceTo(goal.Desired), cur.depth+1))
		}

		iterations++
		if iterations > p.maxIterations {
			res := Result{Outcome: OutcomeCapExceeded, Iterations: iterations, Nodes: len(ar.nodes)}
			p.log(goal, res)
			return res
		}
	}

	res := Result{Outcome: OutcomeExhausted, Iterations: iterations, Nodes: len(ar.nodes)}
	p.log(goal, res)
	return res
}

func (p *Planner) log(goal Goal, res Result) {
	logger := p.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("goap search finished",
		"goal", goal.Name,
		"outcome", res.Outcome.String(),
		"iterations", res.Iterations,
		"nodes", res.Nodes,
		"plan_len", len(res.Actions),
		"cost", res.Cost,
	)
}
