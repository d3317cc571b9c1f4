package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"goapforge/internal/actionset"
	"goapforge/internal/audit"
	"goapforge/internal/goap"
	"goapforge/internal/tracelog"
)

const auditActor = "planner"

// Deps are the optional side channels shared by every operation. A nil
// Audit or Trace disables that channel.
type Deps struct {
	Audit  *audit.Logger
	Trace  *tracelog.Writer
	Logger *slog.Logger
	Now    func() time.Time
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Logger
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

// audit records an event. Failures are logged and otherwise ignored.
func (d Deps) audit(eventType string, payload map[string]any) {
	if d.Audit == nil {
		return
	}
	if err := d.Audit.LogEvent(auditActor, eventType, payload); err != nil {
		d.logger().Warn("audit event dropped", "type", eventType, "err", err)
	}
}

func (d Deps) trace(rec tracelog.Record) {
	if d.Trace == nil {
		return
	}
	if err := d.Trace.Write(rec); err != nil {
		d.logger().Warn("trace record dropped", "kind", rec.Kind, "err", err)
	}
}

// Source locates the domain and scenario documents.
type Source struct {
	DomainsDir   string
	ScenariosDir string
	Scenario     string
}

// resolved is a scenario bound to its domain, goal and start state.
type resolved struct {
	scenario actionset.Scenario
	domain   *actionset.Domain
	goal     goap.Goal
	start    goap.WorldState
}

func (r resolved) names(s goap.WorldState) map[string]bool {
	return s.Names(r.domain.Interner())
}

func (r resolved) maxIterations(configured int) int {
	if r.scenario.MaxIterations > 0 {
		return r.scenario.MaxIterations
	}
	return configured
}

func resolveScenario(src Source) (resolved, error) {
	if src.Scenario == "" {
		return resolved{}, fmt.Errorf("scenario name is required")
	}
	if src.DomainsDir == "" {
		src.DomainsDir = "domains"
	}
	if src.ScenariosDir == "" {
		src.ScenariosDir = "scenarios"
	}

	catalog, err := actionset.LoadDomains(src.DomainsDir)
	if err != nil {
		return resolved{}, err
	}
	scenarios, err := actionset.LoadScenarios(src.ScenariosDir)
	if err != nil {
		return resolved{}, err
	}
	sc, ok := actionset.FindScenario(scenarios, src.Scenario)
	if !ok {
		return resolved{}, fmt.Errorf("unknown scenario: %s", src.Scenario)
	}
	if err := catalog.CheckScenario(sc); err != nil {
		return resolved{}, err
	}
	dom, _ := catalog.Domain(sc.Domain)
	goal, _ := dom.Goal(sc.Goal)
	start, err := sc.StartState(dom)
	if err != nil {
		return resolved{}, err
	}
	return resolved{scenario: sc, domain: dom, goal: goal, start: start}, nil
}

func writeJSONAtomic(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
