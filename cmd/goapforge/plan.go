package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"goapforge/internal/planner"
	"goapforge/internal/planviz"
)

func runPlan(args []string, g globalFlags) error {
	if missingSubcommand(args) {
		return fmt.Errorf("%s plan: missing subcommand (generate, run, show, diff)", appName)
	}
	switch args[0] {
	case "generate":
		return runPlanGenerate(args[1:], g)
	case "run":
		return runPlanRun(args[1:], g)
	case "show":
		return runPlanShow(args[1:], g)
	case "diff":
		return runPlanDiff(args[1:], g)
	default:
		return fmt.Errorf("%s plan: unknown subcommand %q", appName, args[0])
	}
}

func (a *app) source(scenario string) planner.Source {
	return planner.Source{
		DomainsDir:   a.ws.DomainsDir,
		ScenariosDir: a.ws.ScenariosDir,
		Scenario:     scenario,
	}
}

func (a *app) deps() planner.Deps {
	return planner.Deps{Audit: a.audit, Trace: a.trace, Logger: a.logger}
}

func runPlanGenerate(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("plan generate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	scenario := fs.String("scenario", "", "Scenario name (required)")
	outDir := fs.String("out-dir", "", "Base directory for plans (default: <workspace>/artifacts/plans)")
	maxIter := fs.Int("max-iterations", 0, "Override planner.max_iterations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*scenario) == "" {
		return fmt.Errorf("--scenario is required")
	}
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.ws.EnsureDirs(); err != nil {
		return err
	}

	base := a.ws.PlansDir
	if *outDir != "" {
		base, err = a.ws.ResolvePath(*outDir)
		if err != nil {
			return fmt.Errorf("resolve --out-dir: %w", err)
		}
	}
	iterations := a.cfg.Planner.MaxIterations
	if *maxIter > 0 {
		iterations = *maxIter
	}

	res, err := planner.GeneratePlan(planner.GenerateOptions{
		Source:        a.source(*scenario),
		Deps:          a.deps(),
		OutputBaseDir: base,
		MaxIterations: iterations,
		CacheCapacity: a.cfg.Planner.CacheCapacity,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Wrote plan: %s\n", res.PlanPath)
	fmt.Fprintf(os.Stdout, "%d step(s), cost %.1f, %d iteration(s)\n", len(res.Plan.Steps), res.Plan.TotalCost, res.Plan.Iterations)
	return nil
}

func runPlanRun(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("plan run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	scenario := fs.String("scenario", "", "Scenario name (required)")
	maxReplans := fs.Int("max-replans", -1, "Override executor.max_replans (0 disables replanning)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*scenario) == "" {
		return fmt.Errorf("--scenario is required")
	}
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.ws.EnsureDirs(); err != nil {
		return err
	}

	replans := a.cfg.Executor.MaxReplans
	if *maxReplans >= 0 {
		replans = *maxReplans
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := planner.RunPlan(ctx, planner.RunOptions{
		Source:        a.source(*scenario),
		Deps:          a.deps(),
		RunsDir:       a.ws.RunsDir,
		MaxIterations: a.cfg.Planner.MaxIterations,
		CacheCapacity: a.cfg.Planner.CacheCapacity,
		MaxReplans:    replans,
	})
	if err != nil {
		return err
	}

	report := res.Report
	for _, step := range report.Steps {
		line := fmt.Sprintf("  [%d] %-20s %s", step.Attempt, step.Action, step.Status)
		if step.Error != "" {
			line += ": " + step.Error
		}
		fmt.Fprintln(os.Stdout, line)
	}
	fmt.Fprintf(os.Stdout, "Wrote run report: %s\n", res.ReportPath)
	if !report.Success {
		return fmt.Errorf("run %s did not reach goal %s: %s", res.RunID, report.Goal, report.Reason)
	}
	fmt.Fprintf(os.Stdout, "Goal %s reached after %d replan(s)\n", report.Goal, report.Replans)
	return nil
}

func runPlanShow(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("plan show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	planPath := fs.String("plan", "", "Plan file or directory")
	scenario := fs.String("scenario", "", "Show the generated plan of a scenario")
	formatName := fs.String("format", "text", "Output format: text, tree, timeline, dot, json")
	noCosts := fs.Bool("no-costs", false, "Hide action costs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	format, err := planviz.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.close()

	plan, err := a.loadPlan(*planPath, *scenario)
	if err != nil {
		return err
	}
	opts := planviz.DefaultOptions()
	opts.ShowCosts = !*noCosts
	out, err := planviz.Render(plan, format, opts)
	if err != nil {
		return err
	}
	fmt.Fprint(os.Stdout, out)
	return nil
}

func runPlanDiff(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("plan diff", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	pathA := fs.String("a", "", "First plan file or directory")
	pathB := fs.String("b", "", "Second plan file or directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pathA == "" || *pathB == "" {
		return fmt.Errorf("--a and --b are required")
	}
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.close()

	planA, err := a.loadPlan(*pathA, "")
	if err != nil {
		return err
	}
	planB, err := a.loadPlan(*pathB, "")
	if err != nil {
		return err
	}
	diff, err := planviz.Diff(planA, planB)
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintln(os.Stdout, "plans are identical")
		return nil
	}
	fmt.Fprint(os.Stdout, diff)
	return nil
}

func (a *app) loadPlan(path, scenario string) (planner.Plan, error) {
	switch {
	case path != "":
		resolved, err := a.ws.ResolvePath(path)
		if err != nil {
			return planner.Plan{}, fmt.Errorf("resolve plan path: %w", err)
		}
		if path, err = planner.ResolvePlanPath(resolved); err != nil {
			return planner.Plan{}, err
		}
	case scenario != "":
		path = a.ws.PlanPath(scenario)
	default:
		return planner.Plan{}, fmt.Errorf("--plan or --scenario is required")
	}
	return planner.LoadPlan(path)
}
