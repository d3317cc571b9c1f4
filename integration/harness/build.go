package harness

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

// binary holds the CLI build shared by every test in the process.
var binary struct {
	once sync.Once
	root string
	path string
	err  error
}

// RepoRoot returns the directory holding go.mod.
func RepoRoot(t *testing.T) string {
	t.Helper()
	root, err := findRepoRoot()
	if err != nil {
		t.Fatalf("resolve repo root: %v", err)
	}
	return root
}

func findRepoRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("runtime.Caller failed")
	}
	// integration/harness/build.go -> repo root
	root := filepath.Dir(filepath.Dir(filepath.Dir(file)))
	if _, err := os.Stat(filepath.Join(root, "go.mod")); err != nil {
		return "", fmt.Errorf("verify repo root: %w", err)
	}
	return root, nil
}

// BuildBinary compiles cmd/goapforge once per test process and returns the
// binary path.
func BuildBinary(t *testing.T) string {
	t.Helper()
	binary.once.Do(func() {
		binary.root, binary.err = findRepoRoot()
		if binary.err != nil {
			return
		}
		dir, err := os.MkdirTemp("", "goapforge-bin-")
		if err != nil {
			binary.err = fmt.Errorf("create temp dir: %w", err)
			return
		}
		out := filepath.Join(dir, "goapforge")
		cmd := exec.Command("go", "build", "-trimpath", "-o", out, "./cmd/goapforge")
		cmd.Dir = binary.root
		if output, err := cmd.CombinedOutput(); err != nil {
			binary.err = fmt.Errorf("go build: %w\n%s", err, output)
			return
		}
		binary.path = out
	})
	if binary.err != nil {
		t.Fatalf("build goapforge binary: %v", binary.err)
	}
	return binary.path
}
