package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"goapforge/internal/audit"
	"goapforge/internal/executor"
	"goapforge/internal/goap"
	"goapforge/internal/plancache"
	"goapforge/internal/tracelog"
)

type RunOptions struct {
	Source
	Deps

	// RunsDir receives <run-id>/report.json.
	RunsDir       string
	MaxIterations int
	CacheCapacity int
	// MaxReplans of 0 disables replanning; negative selects the executor
	// default.
	MaxReplans int
}

type RunResult struct {
	RunID      string
	ReportPath string
	Report     RunReport
}

// RunPlan executes a scenario in a simulated world through the executor and
// writes the run report. Unsuccessful runs are reported, not returned as
// errors; the error is non-nil when the scenario cannot be loaded, the
// report cannot be written, or ctx ends the run.
func RunPlan(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.RunsDir == "" {
		opts.RunsDir = filepath.Join("artifacts", "runs")
	}
	r, err := resolveScenario(opts.Source)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := opts.logger().With("run_id", runID, "scenario", r.scenario.Name)
	report := RunReport{
		RunID:      runID,
		Scenario:   r.scenario.Name,
		Domain:     r.domain.Name,
		Goal:       r.goal.Name,
		StartedAt:  opts.now().Format(time.RFC3339Nano),
		StartState: r.names(r.start),
		Failures:   r.scenario.FailActions,
	}
	opts.audit(audit.EventRunStarted, map[string]any{
		"run_id":   runID,
		"scenario": report.Scenario,
		"domain":   report.Domain,
		"goal":     report.Goal,
	})

	cp := plancache.NewCachedPlanner(opts.CacheCapacity,
		goap.WithMaxIterations(r.maxIterations(opts.MaxIterations)),
		goap.WithLogger(logger),
	)
	exec := executor.New(cp, executor.WithMaxReplans(opts.MaxReplans), executor.WithLogger(logger))
	world := executor.NewWorld(r.start, r.scenario.FailActions)

	execReport, runErr := exec.Execute(ctx, world, r.goal, r.domain.Actions())

	report.FinishedAt = opts.now().Format(time.RFC3339Nano)
	report.Success = execReport.Success
	report.Reason = execReport.Reason
	report.Replans = execReport.Replans
	report.CacheHits = execReport.CacheHits
	report.Plans = execReport.Plans
	report.Steps = execReport.Steps
	report.FinalState = r.names(execReport.FinalState)
	report.Cache = cp.CacheStats()

	var executed []string
	for _, s := range report.Steps {
		if s.Status == executor.StepDone {
			executed = append(executed, s.Action)
		}
	}
	opts.trace(tracelog.Record{
		Kind:      "run",
		Scenario:  report.Scenario,
		Domain:    report.Domain,
		Goal:      report.Goal,
		Outcome:   runOutcome(report),
		Actions:   executed,
		FromCache: report.CacheHits > 0,
		RunID:     runID,
	})

	reportPath := filepath.Join(opts.RunsDir, runID, "report.json")
	writeErr := writeJSONAtomic(reportPath, report)

	finished := map[string]any{
		"run_id":  runID,
		"success": report.Success,
		"replans": report.Replans,
		"steps":   len(report.Steps),
	}
	if report.Reason != "" {
		finished["reason"] = report.Reason
	}
	if writeErr == nil {
		finished["report_path"] = reportPath
	}
	opts.audit(audit.EventRunFinished, finished)
	logger.Info("run finished", "success", report.Success, "replans", report.Replans, "reason", report.Reason)

	result := &RunResult{RunID: runID, ReportPath: reportPath, Report: report}
	if runErr != nil {
		return result, fmt.Errorf("run %s: %w", runID, runErr)
	}
	if writeErr != nil {
		return result, fmt.Errorf("write run report: %w", writeErr)
	}
	return result, nil
}

func runOutcome(r RunReport) string {
	if r.Success {
		return "success"
	}
	return "failed"
}
