package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigFileName is the workspace configuration file at the workspace root.
const ConfigFileName = "goapforge.yml"

// Workspace is the on-disk layout of a goapforge workspace:
//
//	goapforge.yml
//	domains/*.yml, scenarios/*.yml       inputs
//	artifacts/{plans,runs,traces}/       generated outputs
//	metrics/snapshots/                   cache metric snapshots
//	audit/audit.sqlite                   audit events
type Workspace struct {
	Root         string
	ConfigPath   string
	DomainsDir   string
	ScenariosDir string
	PlansDir     string
	RunsDir      string
	TracesDir    string
	SnapshotsDir string
	AuditDBPath  string
}

// Resolve expands root and requires it to be an existing directory.
func Resolve(root string) (*Workspace, error) {
	abs, err := absRoot(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", abs)
	}
	return layout(abs), nil
}

func layout(root string) *Workspace {
	artifacts := filepath.Join(root, "artifacts")
	return &Workspace{
		Root:         root,
		ConfigPath:   filepath.Join(root, ConfigFileName),
		DomainsDir:   filepath.Join(root, "domains"),
		ScenariosDir: filepath.Join(root, "scenarios"),
		PlansDir:     filepath.Join(artifacts, "plans"),
		RunsDir:      filepath.Join(artifacts, "runs"),
		TracesDir:    filepath.Join(artifacts, "traces"),
		SnapshotsDir: filepath.Join(root, "metrics", "snapshots"),
		AuditDBPath:  filepath.Join(root, "audit", "audit.sqlite"),
	}
}

func (w *Workspace) writableDirs() []string {
	return []string{
		w.DomainsDir,
		w.ScenariosDir,
		w.PlansDir,
		w.RunsDir,
		w.TracesDir,
		w.SnapshotsDir,
		filepath.Dir(w.AuditDBPath),
	}
}

// EnsureDirs creates every directory of the layout that is missing.
func (w *Workspace) EnsureDirs() error {
	if w == nil {
		return errors.New("workspace is nil")
	}
	for _, dir := range w.writableDirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure %s: %w", dir, err)
		}
	}
	return nil
}

// ResolvePath makes path absolute, treating relative paths as relative to the
// workspace root. An empty path stays empty.
func (w *Workspace) ResolvePath(path string) (string, error) {
	if w == nil {
		return "", errors.New("workspace is nil")
	}
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(w.Root, expanded)
	}
	return filepath.Clean(expanded), nil
}

// PlanPath returns the artifact path of a scenario's generated plan.
func (w *Workspace) PlanPath(scenario string) string {
	return filepath.Join(w.PlansDir, scenario, "plan.json")
}

// RunReportPath returns the report path of a plan execution.
func (w *Workspace) RunReportPath(runID string) string {
	return filepath.Join(w.RunsDir, runID, "report.json")
}

func absRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", errors.New("workspace root is required")
	}
	expanded, err := expandHome(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve workspace: %w", err)
	}
	return abs, nil
}

// expandHome handles "~" and "~/..." only.
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	switch {
	case path == "~":
		return home, nil
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, path[2:]), nil
	}
	return "", fmt.Errorf("unsupported home expansion: %s", path)
}
