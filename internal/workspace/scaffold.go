package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Init creates the workspace root and its directories and writes starter
// files that do not exist yet. It returns the paths it wrote.
func Init(root string) (*Workspace, []string, error) {
	abs, err := absRoot(root)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create workspace root: %w", err)
	}
	ws := layout(abs)

	if err := ws.EnsureDirs(); err != nil {
		return nil, nil, err
	}

	files := []struct {
		path     string
		contents string
	}{
		{ws.ConfigPath, starterConfig},
		{filepath.Join(ws.DomainsDir, "forager.yml"), starterDomain},
		{filepath.Join(ws.ScenariosDir, "forage.yml"), starterScenario},
	}
	var written []string
	for _, f := range files {
		wrote, err := writeFileIfMissing(f.path, f.contents)
		if err != nil {
			return nil, nil, err
		}
		if wrote {
			written = append(written, f.path)
		}
	}
	return ws, written, nil
}

func writeFileIfMissing(path string, contents string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("ensure dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

const starterConfig = `planner:
  max_iterations: 1000
  cache_capacity: 1000
executor:
  max_replans: 3
log:
  level: info
  format: text
trace:
  enabled: true
`

const starterDomain = `domain: forager
facts: [hungry, has_herbs, has_food, fed]
sensors:
  - fact: hungry
    when: "hunger > 50"
actions:
  - name: gather_herbs
    cost: 5
    effects: {has_herbs: true}
  - name: craft_food
    cost: 3
    preconditions: {has_herbs: true}
    effects: {has_food: true}
  - name: expensive_direct
    cost: 20
    effects: {has_food: true}
  - name: eat
    preconditions: {has_food: true, hungry: true}
    effects: {fed: true, hungry: false}
goals:
  - name: eat
    priority: 2
    desired: {fed: true}
`

const starterScenario = `scenario: forage
domain: forager
goal: eat
state: {has_food: false}
blackboard: {hunger: 80}
fail_actions: {craft_food: 1}
`
