// Package executor runs GOAP plans against a World through a behaviour tree
// and replans when an action fails.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	bt "github.com/joeycumines/go-behaviortree"

	"goapforge/internal/goap"
	"goapforge/internal/plancache"
)

// DefaultMaxReplans bounds how often Execute replans after a failed action.
const DefaultMaxReplans = 3

// StepStatus is the result of one attempted action.
type StepStatus string

const (
	StepDone   StepStatus = "done"
	StepFailed StepStatus = "failed"
)

// Step records one attempted action.
type Step struct {
	Action  string     `json:"action"`
	Status  StepStatus `json:"status"`
	Attempt int        `json:"attempt"`
	Error   string     `json:"error,omitempty"`
}

// Report is the outcome of Execute.
type Report struct {
	Steps      []Step          `json:"steps"`
	Plans      [][]string      `json:"plans"`
	Replans    int             `json:"replans"`
	CacheHits  int             `json:"cache_hits"`
	Success    bool            `json:"success"`
	Reason     string          `json:"reason,omitempty"`
	FinalState goap.WorldState `json:"-"`
}

// Executor plans with a CachedPlanner and executes the plans step by step.
// Like the CachedPlanner it wraps, an Executor is not safe for concurrent
// use.
type Executor struct {
	planner    *plancache.CachedPlanner
	maxReplans int
	logger     *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithMaxReplans sets how many times Execute may replan. Negative values
// select DefaultMaxReplans; zero disables replanning.
func WithMaxReplans(n int) Option {
	return func(e *Executor) {
		if n < 0 {
			n = DefaultMaxReplans
		}
		e.maxReplans = n
	}
}

// WithLogger sets the executor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// New returns an Executor using planner.
func New(planner *plancache.CachedPlanner, opts ...Option) *Executor {
	e := &Executor{
		planner:    planner,
		maxReplans: DefaultMaxReplans,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute drives world towards goal. Each attempt plans from the current
// world state and runs the plan as a behaviour-tree sequence. When an action
// fails the plan is invalidated and Execute replans, up to the replan limit.
//
// The returned error is non-nil only when ctx is done; planning and action
// failures are reported through Report.
func (e *Executor) Execute(ctx context.Context, world *World, goal goap.Goal, actions []goap.Action) (Report, error) {
	var report Report
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			report.FinalState = world.State()
			report.Reason = "cancelled"
			return report, err
		}

		from := world.State()
		plan, ok, detail := e.planner.PlanDetailed(from, goal, actions)
		if !ok {
			report.Reason = fmt.Sprintf("no plan (%s)", detail.Search.Outcome)
			report.FinalState = world.State()
			return report, nil
		}
		if detail.FromCache {
			report.CacheHits++
		}
		report.Plans = append(report.Plans, goap.ActionNames(plan))

		cursor := goap.NewPlan(plan)
		var stepErr error
		status, err := buildTree(ctx, cursor, plan, world, attempt, &report, &stepErr).Tick()
		if err != nil {
			report.FinalState = world.State()
			report.Reason = "cancelled"
			return report, err
		}
		if status == bt.Success && goal.IsSatisfied(world.State()) {
			report.Success = true
			report.FinalState = world.State()
			return report, nil
		}

		cursor.Invalidate()
		if stale(from, world.State(), goal, actions, stepErr) {
			e.planner.Invalidate(from, goal, actions)
		}
		if attempt >= e.maxReplans {
			report.Reason = fmt.Sprintf("replan limit %d reached", e.maxReplans)
			report.FinalState = world.State()
			return report, nil
		}
		report.Replans++
		e.logger.Info("replanning", "goal", goal.Name, "attempt", attempt+1, "completed", len(cursor.Completed()))
	}
}

// stale reports whether the plan cached for from must be dropped after a
// failed attempt: the plan did not fit the world, or the replan from now
// would hit the same key-only bucket with different fact values.
func stale(from, now goap.WorldState, goal goap.Goal, actions []goap.Action, stepErr error) bool {
	if stepErr == nil || errors.Is(stepErr, ErrPreconditions) {
		return true
	}
	return !now.Equal(from) && plancache.NewKey(now, goal, actions) == plancache.NewKey(from, goal, actions)
}

// buildTree returns a sequence with one leaf per planned action. Leaves
// before the cursor position succeed immediately, so re-ticking the tree
// resumes at the action in flight. The first failing action's error is
// stored in stepErr.
func buildTree(ctx context.Context, cursor *goap.Plan, plan []goap.Action, world *World, attempt int, report *Report, stepErr *error) bt.Node {
	leaves := make([]bt.Node, 0, len(plan))
	for i := range plan {
		i, action := i, plan[i]
		leaves = append(leaves, bt.New(func([]bt.Node) (bt.Status, error) {
			if i < len(cursor.Completed()) {
				return bt.Success, nil
			}
			if err := ctx.Err(); err != nil {
				return bt.Failure, err
			}
			if err := world.Perform(action); err != nil {
				*stepErr = err
				report.Steps = append(report.Steps, Step{
					Action:  action.Name,
					Status:  StepFailed,
					Attempt: attempt,
					Error:   err.Error(),
				})
				return bt.Failure, nil
			}
			report.Steps = append(report.Steps, Step{Action: action.Name, Status: StepDone, Attempt: attempt})
			cursor.Advance()
			return bt.Success, nil
		}))
	}
	return bt.New(bt.Sequence, leaves...)
}
