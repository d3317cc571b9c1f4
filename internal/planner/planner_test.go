package planner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"goapforge/internal/audit"
	"goapforge/internal/executor"
	"goapforge/internal/metrics"
	"goapforge/internal/tracelog"
	"goapforge/internal/workspace"
)

const stuckScenario = `scenario: stuck
domain: forager
goal: eat
state: {hungry: false}
blackboard: {hunger: 10}
`

type env struct {
	ws    *workspace.Workspace
	audit *audit.Logger
	trace *tracelog.Writer
	now   time.Time
}

func newEnv(t *testing.T) env {
	t.Helper()
	ws, _, err := workspace.Init(t.TempDir())
	if err != nil {
		t.Fatalf("init workspace: %v", err)
	}
	if err := os.WriteFile(filepath.Join(ws.ScenariosDir, "stuck.yml"), []byte(stuckScenario), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	e := env{
		ws:    ws,
		audit: audit.NewLogger(ws.AuditDBPath),
		trace: tracelog.NewWriter(ws.TracesDir),
		now:   time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	t.Cleanup(func() { _ = e.trace.Close() })
	return e
}

func (e env) source(scenario string) Source {
	return Source{DomainsDir: e.ws.DomainsDir, ScenariosDir: e.ws.ScenariosDir, Scenario: scenario}
}

func (e env) deps() Deps {
	return Deps{Audit: e.audit, Trace: e.trace, Now: func() time.Time { return e.now }}
}

func (e env) traces(t *testing.T) []tracelog.Record {
	t.Helper()
	if err := e.trace.Close(); err != nil {
		t.Fatalf("close trace: %v", err)
	}
	files, err := tracelog.Files(e.ws.TracesDir)
	if err != nil {
		t.Fatalf("list traces: %v", err)
	}
	var recs []tracelog.Record
	for _, f := range files {
		got, err := tracelog.ReadFile(f)
		if err != nil {
			t.Fatalf("read trace: %v", err)
		}
		recs = append(recs, got...)
	}
	return recs
}

func TestGeneratePlanWritesArtifact(t *testing.T) {
	e := newEnv(t)
	res, err := GeneratePlan(GenerateOptions{
		Source:        e.source("forage"),
		Deps:          e.deps(),
		OutputBaseDir: e.ws.PlansDir,
	})
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if res.PlanPath != e.ws.PlanPath("forage") {
		t.Fatalf("plan path = %s, want %s", res.PlanPath, e.ws.PlanPath("forage"))
	}

	plan, err := LoadPlan(res.PlanPath)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	want := []string{"gather_herbs", "craft_food", "eat"}
	if got := plan.ActionNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("actions = %v, want %v", got, want)
	}
	if plan.TotalCost != 9 {
		t.Fatalf("total cost = %v, want 9", plan.TotalCost)
	}
	if plan.Outcome != "solved" || plan.Domain != "forager" || plan.Goal != "eat" {
		t.Fatalf("unexpected header: %+v", plan)
	}
	if plan.GeneratedAt != "2026-03-01T09:30:00Z" {
		t.Fatalf("generated_at = %s", plan.GeneratedAt)
	}
	if !plan.StartState["hungry"] || plan.StartState["has_food"] {
		t.Fatalf("start state = %v", plan.StartState)
	}
	if !plan.Steps[1].Preconditions["has_herbs"] || !plan.Steps[1].Effects["has_food"] {
		t.Fatalf("craft_food step = %+v", plan.Steps[1])
	}

	counts, err := e.audit.CountByType()
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if counts[audit.EventPlanRequested] != 1 || counts[audit.EventPlanSolved] != 1 {
		t.Fatalf("audit counts = %v", counts)
	}

	recs := e.traces(t)
	if len(recs) != 1 || recs[0].Kind != "generate" || recs[0].Outcome != "solved" {
		t.Fatalf("trace records = %+v", recs)
	}
}

func TestGeneratePlanUnsolvable(t *testing.T) {
	e := newEnv(t)
	res, err := GeneratePlan(GenerateOptions{
		Source:        e.source("stuck"),
		Deps:          e.deps(),
		OutputBaseDir: e.ws.PlansDir,
	})
	if err == nil {
		t.Fatalf("expected error for unsolvable scenario")
	}
	if !strings.Contains(err.Error(), "no plan for goal eat (exhausted") {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Search.Solved() {
		t.Fatalf("search reported solved")
	}
	if _, statErr := os.Stat(e.ws.PlanPath("stuck")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("plan artifact should not exist: %v", statErr)
	}

	counts, err := e.audit.CountByType()
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if counts[audit.EventPlanFailed] != 1 || counts[audit.EventPlanSolved] != 0 {
		t.Fatalf("audit counts = %v", counts)
	}
}

func TestGeneratePlanUnknownScenario(t *testing.T) {
	e := newEnv(t)
	_, err := GeneratePlan(GenerateOptions{Source: e.source("missing"), OutputBaseDir: e.ws.PlansDir})
	if err == nil || !strings.Contains(err.Error(), "unknown scenario: missing") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScenarioMaxIterationsOverride(t *testing.T) {
	e := newEnv(t)
	capped := "scenario: capped\ndomain: forager\ngoal: eat\nblackboard: {hunger: 80}\nmax_iterations: 1\n"
	if err := os.WriteFile(filepath.Join(e.ws.ScenariosDir, "capped.yml"), []byte(capped), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	_, err := GeneratePlan(GenerateOptions{
		Source:        e.source("capped"),
		OutputBaseDir: e.ws.PlansDir,
		MaxIterations: 1000,
	})
	if err == nil || !strings.Contains(err.Error(), "cap_exceeded") {
		t.Fatalf("expected iteration cap error, got %v", err)
	}
}

func TestRunPlanReplansAfterInjectedFailure(t *testing.T) {
	e := newEnv(t)
	res, err := RunPlan(context.Background(), RunOptions{
		Source:     e.source("forage"),
		Deps:       e.deps(),
		RunsDir:    e.ws.RunsDir,
		MaxReplans: 3,
	})
	if err != nil {
		t.Fatalf("RunPlan: %v", err)
	}
	if res.ReportPath != e.ws.RunReportPath(res.RunID) {
		t.Fatalf("report path = %s", res.ReportPath)
	}

	report, err := LoadRunReport(res.ReportPath)
	if err != nil {
		t.Fatalf("LoadRunReport: %v", err)
	}
	if !report.Success || report.Replans != 1 {
		t.Fatalf("report = %+v", report)
	}
	wantSteps := []executor.Step{
		{Action: "gather_herbs", Status: executor.StepDone, Attempt: 0},
		{Action: "craft_food", Status: executor.StepFailed, Attempt: 0},
		{Action: "craft_food", Status: executor.StepDone, Attempt: 1},
		{Action: "eat", Status: executor.StepDone, Attempt: 1},
	}
	if len(report.Steps) != len(wantSteps) {
		t.Fatalf("steps = %+v", report.Steps)
	}
	for i, want := range wantSteps {
		got := report.Steps[i]
		if got.Action != want.Action || got.Status != want.Status || got.Attempt != want.Attempt {
			t.Fatalf("step %d = %+v, want %+v", i, got, want)
		}
	}
	if !report.FinalState["fed"] || report.FinalState["hungry"] {
		t.Fatalf("final state = %v", report.FinalState)
	}
	if report.Cache.Misses != 2 {
		t.Fatalf("cache stats = %+v", report.Cache)
	}

	counts, err := e.audit.CountByType()
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if counts[audit.EventRunStarted] != 1 || counts[audit.EventRunFinished] != 1 {
		t.Fatalf("audit counts = %v", counts)
	}

	recs := e.traces(t)
	if len(recs) != 1 || recs[0].RunID != res.RunID || recs[0].Outcome != "success" {
		t.Fatalf("trace records = %+v", recs)
	}
}

func TestRunPlanWithoutReplanning(t *testing.T) {
	e := newEnv(t)
	res, err := RunPlan(context.Background(), RunOptions{
		Source:  e.source("forage"),
		RunsDir: e.ws.RunsDir,
	})
	if err != nil {
		t.Fatalf("RunPlan: %v", err)
	}
	if res.Report.Success {
		t.Fatalf("run should fail without replanning")
	}
	if res.Report.Reason != "replan limit 0 reached" {
		t.Fatalf("reason = %q", res.Report.Reason)
	}
}

func TestRunPlanCancelled(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := RunPlan(ctx, RunOptions{Source: e.source("forage"), RunsDir: e.ws.RunsDir})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Report.Reason != "cancelled" {
		t.Fatalf("result = %+v", res)
	}
	if _, err := os.Stat(res.ReportPath); err != nil {
		t.Fatalf("report should still be written: %v", err)
	}
}

func TestBenchScenarioServesFromCache(t *testing.T) {
	e := newEnv(t)
	snapshots := e.ws.SnapshotsDir
	res, err := BenchScenario(context.Background(), BenchOptions{
		Source:      e.source("forage"),
		Deps:        e.deps(),
		Repeat:      10,
		SnapshotDir: snapshots,
	})
	if err != nil {
		t.Fatalf("BenchScenario: %v", err)
	}
	if !res.Solved || res.Stats.Hits != 9 || res.Stats.Misses != 1 {
		t.Fatalf("bench result = %+v", res)
	}

	snap, err := metrics.LoadSnapshot(res.SnapshotPath)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	rate, ok := metrics.Find(snap.Points, "plancache.hit_rate", metrics.Dimension{Key: "scenario", Value: "forage"})
	if !ok || rate.Value != 0.9 {
		t.Fatalf("hit rate point = %+v (found %v)", rate, ok)
	}
	if _, ok := metrics.Find(snap.Points, "planner.iterations"); !ok {
		t.Fatalf("missing planner.iterations in %+v", snap.Points)
	}
}

func TestBenchScenarioUnsolvableNeverHits(t *testing.T) {
	e := newEnv(t)
	res, err := BenchScenario(context.Background(), BenchOptions{Source: e.source("stuck"), Repeat: 3})
	if err != nil {
		t.Fatalf("BenchScenario: %v", err)
	}
	if res.Solved || res.Stats.Hits != 0 || res.Stats.Misses != 3 {
		t.Fatalf("bench result = %+v", res)
	}
}

func TestValidatePlan(t *testing.T) {
	valid := Plan{
		ID: "p", Scenario: "s", Domain: "d", Goal: "g", Outcome: "solved", TotalCost: 3,
		Steps: []PlanStep{{Index: 0, Action: "a", Cost: 1}, {Index: 1, Action: "b", Cost: 2}},
	}
	if err := ValidatePlan(valid); err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}

	cases := map[string]func(p *Plan){
		"plan id is required":       func(p *Plan) { p.ID = " " },
		"plan outcome must be":      func(p *Plan) { p.Outcome = "exhausted" },
		"does not match step costs": func(p *Plan) { p.TotalCost = 4 },
		"out of order":              func(p *Plan) { p.Steps[1].Index = 5 },
		"action is required":        func(p *Plan) { p.Steps[0].Action = "" },
	}
	for want, mutate := range cases {
		p := valid
		p.Steps = append([]PlanStep(nil), valid.Steps...)
		mutate(&p)
		err := ValidatePlan(p)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("%s: got %v", want, err)
		}
	}
}

func TestResolvePlanPath(t *testing.T) {
	dir := t.TempDir()
	got, err := ResolvePlanPath(dir)
	if err != nil {
		t.Fatalf("ResolvePlanPath: %v", err)
	}
	if got != filepath.Join(dir, "plan.json") {
		t.Fatalf("got %s", got)
	}
	if _, err := ResolvePlanPath(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadPlanRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	body := `{"id":"p","scenario":"s","domain":"d","goal":"g","outcome":"solved","steps":[],"bogus":true}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadPlan(path); err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}
