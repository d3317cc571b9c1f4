// Package planviz renders plan artifacts for humans and graph tools, and
// diffs two plans.
package planviz

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"goapforge/internal/planner"
)

type Format string

const (
	FormatText     Format = "text"
	FormatTree     Format = "tree"
	FormatTimeline Format = "timeline"
	FormatDOT      Format = "dot"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatTree, FormatTimeline, FormatDOT, FormatJSON}

// maxChanges caps the state changes shown per timeline row.
const maxChanges = 2

func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatText, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, joinFormats())
}

func joinFormats() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

type Options struct {
	ShowCosts   bool
	ShowEffects bool
}

func DefaultOptions() Options {
	return Options{ShowCosts: true, ShowEffects: true}
}

// Render formats plan.
func Render(plan planner.Plan, format Format, opts Options) (string, error) {
	switch format {
	case FormatText, "":
		return renderText(plan, opts), nil
	case FormatTree:
		return renderTree(plan, opts), nil
	case FormatTimeline:
		return renderTimeline(plan, opts), nil
	case FormatDOT:
		return renderDOT(plan, opts), nil
	case FormatJSON:
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal plan: %w", err)
		}
		return string(data) + "\n", nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

func renderText(plan planner.Plan, opts Options) string {
	var b strings.Builder
	if len(plan.Steps) == 0 {
		fmt.Fprintf(&b, "goal %s already satisfied\n", plan.Goal)
		return b.String()
	}
	for i, step := range plan.Steps {
		fmt.Fprintf(&b, "%d. %s", i+1, step.Action)
		if opts.ShowCosts {
			fmt.Fprintf(&b, " (cost: %.1f)", step.Cost)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderTree(plan planner.Plan, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan %s -> %s (%d actions", plan.Scenario, plan.Goal, len(plan.Steps))
	if opts.ShowCosts {
		fmt.Fprintf(&b, ", cost: %.1f", plan.TotalCost)
	}
	b.WriteString(")\n")
	for i, step := range plan.Steps {
		branch, indent := "├─", "│  "
		if i == len(plan.Steps)-1 {
			branch, indent = "└─", "   "
		}
		fmt.Fprintf(&b, "%s %s", branch, step.Action)
		if opts.ShowCosts {
			fmt.Fprintf(&b, " (cost: %.1f)", step.Cost)
		}
		b.WriteByte('\n')
		if opts.ShowEffects && len(step.Effects) > 0 {
			fmt.Fprintf(&b, "%s└─ sets %s\n", indent, formatFacts(step.Effects, 0))
		}
	}
	return b.String()
}

func renderTimeline(plan planner.Plan, opts Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s | %-20s | %s\n", "At", "Action", "State changes")
	b.WriteString(strings.Repeat("-", 60))
	b.WriteByte('\n')
	var at float32
	for _, step := range plan.Steps {
		changes := "..."
		if opts.ShowEffects {
			changes = formatFacts(step.Effects, maxChanges)
		}
		fmt.Fprintf(&b, "%-6.1f | %-20s | %s\n", at, step.Action, changes)
		at += step.Cost
	}
	fmt.Fprintf(&b, "%-6.1f | %-20s |\n", at, "(goal "+plan.Goal+")")
	return b.String()
}

func renderDOT(plan planner.Plan, opts Options) string {
	var b strings.Builder
	b.WriteString("digraph Plan {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")
	b.WriteString("  start [label=\"Start\", shape=circle];\n")
	prev := "start"
	for i, step := range plan.Steps {
		id := fmt.Sprintf("step_%d", i)
		label := step.Action
		if opts.ShowCosts {
			label = fmt.Sprintf("%s\\ncost: %.1f", step.Action, step.Cost)
		}
		fmt.Fprintf(&b, "  %s [label=\"%s\"];\n", id, label)
		fmt.Fprintf(&b, "  %s -> %s;\n", prev, id)
		prev = id
	}
	fmt.Fprintf(&b, "  goal [label=\"%s\", shape=doublecircle];\n", plan.Goal)
	fmt.Fprintf(&b, "  %s -> goal;\n", prev)
	b.WriteString("}\n")
	return b.String()
}

// formatFacts renders facts sorted by name. limit > 0 truncates the list.
func formatFacts(facts map[string]bool, limit int) string {
	if len(facts) == 0 {
		return "(no changes)"
	}
	names := make([]string, 0, len(facts))
	for name := range facts {
		names = append(names, name)
	}
	sort.Strings(names)
	shown := names
	if limit > 0 && len(names) > limit {
		shown = names[:limit]
	}
	parts := make([]string, len(shown))
	for i, name := range shown {
		parts[i] = fmt.Sprintf("%s=%t", name, facts[name])
	}
	out := strings.Join(parts, ", ")
	if extra := len(names) - len(shown); extra > 0 {
		out += fmt.Sprintf(", +%d more", extra)
	}
	return out
}

// Diff returns a unified diff of the step lists of a and b, or "" when they
// plan the same actions at the same costs.
func Diff(a, b planner.Plan) (string, error) {
	linesA, linesB := stepLines(a), stepLines(b)
	if slices.Equal(linesA, linesB) {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        linesA,
		B:        linesB,
		FromFile: label(a),
		ToFile:   label(b),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff plans: %w", err)
	}
	return text, nil
}

func stepLines(p planner.Plan) []string {
	lines := make([]string, 0, len(p.Steps)+1)
	for _, step := range p.Steps {
		lines = append(lines, fmt.Sprintf("%s (cost: %.1f)\n", step.Action, step.Cost))
	}
	lines = append(lines, fmt.Sprintf("total cost: %.1f\n", p.TotalCost))
	return lines
}

func label(p planner.Plan) string {
	id := p.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s/%s@%s", p.Scenario, p.Goal, id)
}
