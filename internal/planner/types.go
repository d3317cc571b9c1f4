package planner

import (
	"goapforge/internal/executor"
	"goapforge/internal/plancache"
)

// Plan is the artifact written by GeneratePlan.
type Plan struct {
	ID          string          `json:"id"`
	Scenario    string          `json:"scenario"`
	Domain      string          `json:"domain"`
	Goal        string          `json:"goal"`
	Outcome     string          `json:"outcome"`
	Iterations  int             `json:"iterations"`
	Nodes       int             `json:"nodes"`
	TotalCost   float32         `json:"total_cost"`
	StartState  map[string]bool `json:"start_state"`
	Desired     map[string]bool `json:"desired"`
	Steps       []PlanStep      `json:"steps"`
	GeneratedAt string          `json:"generated_at"`
}

// PlanStep is one action of a plan artifact.
type PlanStep struct {
	Index         int             `json:"index"`
	Action        string          `json:"action"`
	Cost          float32         `json:"cost"`
	Preconditions map[string]bool `json:"preconditions,omitempty"`
	Effects       map[string]bool `json:"effects,omitempty"`
}

// ActionNames returns the step actions in order.
func (p Plan) ActionNames() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Action
	}
	return names
}

// RunReport is the artifact written by RunPlan.
type RunReport struct {
	RunID      string          `json:"run_id"`
	Scenario   string          `json:"scenario"`
	Domain     string          `json:"domain"`
	Goal       string          `json:"goal"`
	StartedAt  string          `json:"started_at"`
	FinishedAt string          `json:"finished_at"`
	Success    bool            `json:"success"`
	Reason     string          `json:"reason,omitempty"`
	Replans    int             `json:"replans"`
	CacheHits  int             `json:"cache_hits"`
	Plans      [][]string      `json:"plans"`
	Steps      []executor.Step `json:"steps"`
	StartState map[string]bool `json:"start_state"`
	FinalState map[string]bool `json:"final_state"`
	Cache      plancache.Stats `json:"cache"`
	Failures   map[string]int  `json:"fail_actions,omitempty"`
}
