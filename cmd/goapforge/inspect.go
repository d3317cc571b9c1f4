package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"goapforge/internal/planner"
	"goapforge/internal/tracelog"
)

func runCache(args []string, g globalFlags) error {
	if missingSubcommand(args) {
		return fmt.Errorf("%s cache: missing subcommand (bench)", appName)
	}
	switch args[0] {
	case "bench":
		return runCacheBench(args[1:], g)
	default:
		return fmt.Errorf("%s cache: unknown subcommand %q", appName, args[0])
	}
}

func runCacheBench(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("cache bench", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	scenario := fs.String("scenario", "", "Scenario name (required)")
	repeat := fs.Int("repeat", planner.DefaultBenchRepeat, "Number of planning calls")
	noSnapshot := fs.Bool("no-snapshot", false, "Do not write a metrics snapshot")
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

	opts := planner.BenchOptions{
		Source:        a.source(*scenario),
		Deps:          planner.Deps{Logger: a.logger},
		Repeat:        *repeat,
		MaxIterations: a.cfg.Planner.MaxIterations,
		CacheCapacity: a.cfg.Planner.CacheCapacity,
	}
	if !*noSnapshot {
		opts.SnapshotDir = a.ws.SnapshotsDir
	}
	res, err := planner.BenchScenario(context.Background(), opts)
	if err != nil {
		return err
	}

	if res.Solved {
		fmt.Fprintf(os.Stdout, "plan: %s (cost %.1f)\n", strings.Join(res.Actions, " -> "), res.Search.Cost)
	} else {
		fmt.Fprintf(os.Stdout, "no plan (%s)\n", res.Search.Outcome)
	}
	fmt.Fprintf(os.Stdout, "calls: %d in %s\n", res.Repeat, res.Elapsed)
	fmt.Fprintf(os.Stdout, "hits: %d  misses: %d  evictions: %d  invalidations: %d  hit rate: %.1f%%\n",
		res.Stats.Hits, res.Stats.Misses, res.Stats.Evictions, res.Stats.Invalidations, res.Stats.HitRate()*100)
	if res.SnapshotPath != "" {
		fmt.Fprintf(os.Stdout, "Wrote snapshot: %s\n", res.SnapshotPath)
	}
	return nil
}

func runTrace(args []string, g globalFlags) error {
	if missingSubcommand(args) {
		return fmt.Errorf("%s trace: missing subcommand (cat)", appName)
	}
	switch args[0] {
	case "cat":
		return runTraceCat(args[1:], g)
	default:
		return fmt.Errorf("%s trace: unknown subcommand %q", appName, args[0])
	}
}

func runTraceCat(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("trace cat", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := fs.String("file", "", "Trace file (default: every file under artifacts/traces)")
	kind := fs.String("kind", "", "Only records of this kind (generate, run)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.close()

	var files []string
	if *file != "" {
		path, err := a.ws.ResolvePath(*file)
		if err != nil {
			return fmt.Errorf("resolve --file: %w", err)
		}
		files = []string{path}
	} else {
		files, err = tracelog.Files(a.ws.TracesDir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no trace files in %s", a.ws.TracesDir)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	for _, f := range files {
		recs, err := tracelog.ReadFile(f)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if *kind != "" && rec.Kind != *kind {
				continue
			}
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("write trace record: %w", err)
			}
		}
	}
	return nil
}

func runAudit(args []string, g globalFlags) error {
	if missingSubcommand(args) {
		return fmt.Errorf("%s audit: missing subcommand (tail)", appName)
	}
	switch args[0] {
	case "tail":
		return runAuditTail(args[1:], g)
	default:
		return fmt.Errorf("%s audit: unknown subcommand %q", appName, args[0])
	}
}

func runAuditTail(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("audit tail", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 20, "Number of events to show (0 shows all)")
	counts := fs.Bool("counts", false, "Show event counts by type instead of events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.close()

	if *counts {
		byType, err := a.audit.CountByType()
		if err != nil {
			return err
		}
		types := make([]string, 0, len(byType))
		for t := range byType {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(os.Stdout, "%-16s %d\n", t, byType[t])
		}
		return nil
	}

	events, err := a.audit.Recent(*limit)
	if err != nil {
		return err
	}
	for _, ev := range events {
		fmt.Fprintf(os.Stdout, "%s  %-16s %-8s %s\n", ev.TS.Format("2006-01-02T15:04:05Z07:00"), ev.Type, ev.Actor, string(ev.Payload))
	}
	return nil
}
