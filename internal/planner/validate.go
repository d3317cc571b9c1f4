package planner

import (
	"fmt"
	"math"
	"strings"

	"goapforge/internal/goap"
)

// costTolerance absorbs float32 rounding when totals are recomputed.
const costTolerance = 1e-3

func ValidatePlan(plan Plan) error {
	if strings.TrimSpace(plan.ID) == "" {
		return fmt.Errorf("plan id is required")
	}
	if strings.TrimSpace(plan.Scenario) == "" {
		return fmt.Errorf("plan scenario is required")
	}
	if strings.TrimSpace(plan.Domain) == "" {
		return fmt.Errorf("plan domain is required")
	}
	if strings.TrimSpace(plan.Goal) == "" {
		return fmt.Errorf("plan goal is required")
	}
	if plan.Outcome != goap.OutcomeSolved.String() {
		return fmt.Errorf("plan outcome must be %q, got %q", goap.OutcomeSolved, plan.Outcome)
	}
	if plan.TotalCost < 0 {
		return fmt.Errorf("plan total_cost must not be negative")
	}
	var sum float64
	for idx, step := range plan.Steps {
		if err := ValidatePlanStep(step, idx); err != nil {
			return fmt.Errorf("plan step %d: %w", idx, err)
		}
		sum += float64(step.Cost)
	}
	if math.Abs(sum-float64(plan.TotalCost)) > costTolerance {
		return fmt.Errorf("plan total_cost %g does not match step costs %g", plan.TotalCost, sum)
	}
	return nil
}

func ValidatePlanStep(step PlanStep, idx int) error {
	if step.Index != idx {
		return fmt.Errorf("index %d out of order", step.Index)
	}
	if strings.TrimSpace(step.Action) == "" {
		return fmt.Errorf("action is required")
	}
	if step.Cost < 0 {
		return fmt.Errorf("cost must not be negative")
	}
	return nil
}
