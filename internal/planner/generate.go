package planner

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"goapforge/internal/audit"
	"goapforge/internal/goap"
	"goapforge/internal/plancache"
	"goapforge/internal/tracelog"
)

type GenerateOptions struct {
	Source
	Deps

	// OutputBaseDir receives <scenario>/plan.json.
	OutputBaseDir string
	MaxIterations int
	CacheCapacity int
}

type GenerateResult struct {
	Plan     Plan
	PlanPath string
	Search   goap.Result
}

// GeneratePlan plans a scenario and writes the plan artifact. A scenario
// with no plan is audited and traced, then reported as an error.
func GeneratePlan(opts GenerateOptions) (GenerateResult, error) {
	if opts.OutputBaseDir == "" {
		opts.OutputBaseDir = filepath.Join("artifacts", "plans")
	}

	r, err := resolveScenario(opts.Source)
	if err != nil {
		return GenerateResult{}, err
	}
	base := map[string]any{
		"scenario": r.scenario.Name,
		"domain":   r.domain.Name,
		"goal":     r.goal.Name,
	}
	opts.audit(audit.EventPlanRequested, base)

	maxIter := r.maxIterations(opts.MaxIterations)
	cp := plancache.NewCachedPlanner(opts.CacheCapacity,
		goap.WithMaxIterations(maxIter),
		goap.WithLogger(opts.logger()),
	)
	actions, ok, detail := cp.PlanDetailed(r.start, r.goal, r.domain.Actions())
	search := detail.Search

	opts.trace(tracelog.Record{
		Kind:       "generate",
		Scenario:   r.scenario.Name,
		Domain:     r.domain.Name,
		Goal:       r.goal.Name,
		Outcome:    search.Outcome.String(),
		Iterations: search.Iterations,
		Nodes:      search.Nodes,
		Cost:       search.Cost,
		Actions:    goap.ActionNames(actions),
		FromCache:  detail.FromCache,
	})

	if !ok {
		opts.audit(audit.EventPlanFailed, with(base, map[string]any{
			"outcome":        search.Outcome.String(),
			"iterations":     search.Iterations,
			"max_iterations": cp.BasePlanner().MaxIterations(),
		}))
		return GenerateResult{Search: search}, fmt.Errorf("scenario %s: no plan for goal %s (%s after %d iterations)",
			r.scenario.Name, r.goal.Name, search.Outcome, search.Iterations)
	}

	plan := buildPlan(r, actions, search, opts.now())
	if err := ValidatePlan(plan); err != nil {
		return GenerateResult{}, err
	}
	planPath := filepath.Join(opts.OutputBaseDir, r.scenario.Name, "plan.json")
	if err := writeJSONAtomic(planPath, plan); err != nil {
		return GenerateResult{}, fmt.Errorf("write plan: %w", err)
	}

	opts.audit(audit.EventPlanSolved, with(base, map[string]any{
		"plan_id":    plan.ID,
		"plan_path":  planPath,
		"steps":      len(plan.Steps),
		"total_cost": plan.TotalCost,
		"iterations": plan.Iterations,
	}))
	opts.logger().Info("plan generated", "scenario", plan.Scenario, "steps", len(plan.Steps), "cost", plan.TotalCost, "path", planPath)

	return GenerateResult{Plan: plan, PlanPath: planPath, Search: search}, nil
}

func buildPlan(r resolved, actions []goap.Action, search goap.Result, now time.Time) Plan {
	steps := make([]PlanStep, len(actions))
	for i, a := range actions {
		steps[i] = PlanStep{
			Index:         i,
			Action:        a.Name,
			Cost:          a.Cost,
			Preconditions: nonEmpty(r.names(a.Preconditions)),
			Effects:       nonEmpty(r.names(a.Effects)),
		}
	}
	return Plan{
		ID:          uuid.NewString(),
		Scenario:    r.scenario.Name,
		Domain:      r.domain.Name,
		Goal:        r.goal.Name,
		Outcome:     search.Outcome.String(),
		Iterations:  search.Iterations,
		Nodes:       search.Nodes,
		TotalCost:   goap.TotalCost(actions),
		StartState:  r.names(r.start),
		Desired:     r.names(r.goal.Desired),
		Steps:       steps,
		GeneratedAt: now.Format(time.RFC3339),
	}
}

func nonEmpty(m map[string]bool) map[string]bool {
	if len(m) == 0 {
		return nil
	}
	return m
}

func with(base map[string]any, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
