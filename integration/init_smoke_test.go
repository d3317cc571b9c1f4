package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goapforge/integration/harness"
)

func TestHelp(t *testing.T) {
	binPath := harness.BuildBinary(t)
	stdout, stderr, code := harness.Run(t, binPath, t.TempDir(), []string{"--help"})
	if code != 0 {
		t.Fatalf("goapforge --help exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout+stderr, "goal-oriented action planning") {
		t.Fatalf("expected help header\nstdout:\n%s\nstderr:\n%s", stdout, stderr)
	}

	_, stderr, code = harness.Run(t, binPath, t.TempDir(), []string{"bogus"})
	if code == 0 || !strings.Contains(stderr, "Unknown command: bogus") {
		t.Fatalf("unknown command: code %d\nstderr:\n%s", code, stderr)
	}
}

func TestInitSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	workspaceRoot := filepath.Join(t.TempDir(), "workspace-init")

	stdout := harness.RunOK(t, binPath, t.TempDir(), "init", "--workspace", workspaceRoot)
	if !strings.Contains(stdout, "Initialized workspace") {
		t.Fatalf("unexpected init output:\n%s", stdout)
	}

	paths := []string{
		filepath.Join(workspaceRoot, "goapforge.yml"),
		filepath.Join(workspaceRoot, "domains", "forager.yml"),
		filepath.Join(workspaceRoot, "scenarios", "forage.yml"),
		filepath.Join(workspaceRoot, "artifacts", "plans"),
		filepath.Join(workspaceRoot, "artifacts", "runs"),
		filepath.Join(workspaceRoot, "artifacts", "traces"),
		filepath.Join(workspaceRoot, "metrics", "snapshots"),
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing init path %s: %v", path, err)
		}
	}
	requireAuditEvents(t, filepath.Join(workspaceRoot, "audit", "audit.sqlite"), []string{"workspace_init"})

	// A second init keeps existing files.
	stdout = harness.RunOK(t, binPath, t.TempDir(), "--workspace", workspaceRoot, "init")
	if strings.Contains(stdout, "wrote") {
		t.Fatalf("re-init rewrote files:\n%s", stdout)
	}

	harness.RunOK(t, binPath, t.TempDir(), "--workspace", workspaceRoot, "domain", "validate")
	harness.RunOK(t, binPath, t.TempDir(), "--workspace", workspaceRoot, "plan", "generate", "--scenario", "forage")
}

func TestMissingWorkspace(t *testing.T) {
	binPath := harness.BuildBinary(t)
	_, stderr, code := harness.Run(t, binPath, t.TempDir(), []string{"domain", "validate"})
	if code == 0 || !strings.Contains(stderr, "--workspace is required") {
		t.Fatalf("code %d\nstderr:\n%s", code, stderr)
	}
}
