package actionset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Catalog holds every loaded domain by name.
type Catalog struct {
	domains map[string]*Domain
	names   []string
}

// LoadDomains loads and validates all domain YAML files from dir. Validation
// problems across every file are reported together.
func LoadDomains(dir string) (*Catalog, error) {
	if dir == "" {
		dir = "domains"
	}
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no domain YAML files found in %s", dir)
	}

	cat := &Catalog{domains: make(map[string]*Domain)}
	var vErrs ValidationErrors
	for _, path := range files {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		d, parseErr := ParseDomain(data, path)
		if parseErr != nil {
			if ve, ok := parseErr.(ValidationErrors); ok {
				vErrs = append(vErrs, ve...)
				continue
			}
			return nil, parseErr
		}
		if prev, exists := cat.domains[d.Name]; exists {
			vErrs = append(vErrs, ValidationError{
				File:    path,
				Field:   "domain",
				Message: fmt.Sprintf("domain %q already defined in %s", d.Name, prev.Source),
			})
			continue
		}
		cat.domains[d.Name] = d
		cat.names = append(cat.names, d.Name)
	}
	if len(vErrs) > 0 {
		return nil, vErrs
	}
	sort.Strings(cat.names)
	return cat, nil
}

// Domain returns the named domain.
func (c *Catalog) Domain(name string) (*Domain, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.domains[name]
	return d, ok
}

// Names returns the domain names in lexical order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

// Domains returns the domains ordered by name.
func (c *Catalog) Domains() []*Domain {
	if c == nil {
		return nil
	}
	out := make([]*Domain, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.domains[name])
	}
	return out
}

// CheckScenario cross-validates a scenario against the catalog: its domain
// and goal exist, failure injections name real actions, and literal facts
// belong to the domain vocabulary when one is declared.
func (c *Catalog) CheckScenario(s Scenario) error {
	var errs ValidationErrors
	d, ok := c.Domain(s.Domain)
	if !ok {
		return ValidationErrors{{File: s.Source, Field: "domain", Message: fmt.Sprintf("unknown domain %q", s.Domain)}}
	}
	if _, ok := d.Goal(s.Goal); !ok {
		errs = append(errs, ValidationError{
			File:    s.Source,
			Field:   "goal",
			Message: fmt.Sprintf("domain %s has no goal %q", d.Name, s.Goal),
		})
	}
	for _, name := range sortedCounts(s.FailActions) {
		if _, ok := d.Action(name); !ok {
			errs = append(errs, ValidationError{
				File:    s.Source,
				Field:   "fail_actions." + name,
				Message: fmt.Sprintf("domain %s has no action %q", d.Name, name),
			})
		}
	}
	for _, fact := range sortedKeys(s.State) {
		if !d.declares(fact) {
			errs = append(errs, ValidationError{
				File:    s.Source,
				Field:   "state." + fact,
				Message: fmt.Sprintf("fact %q is not declared by domain %s", fact, d.Name),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// LoadScenarios loads and validates all scenario YAML files from dir, sorted
// by file name.
func LoadScenarios(dir string) ([]Scenario, error) {
	if dir == "" {
		dir = "scenarios"
	}
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}

	var out []Scenario
	var vErrs ValidationErrors
	seen := make(map[string]string)
	for _, path := range files {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("read %s: %w", path, readErr)
		}
		s, parseErr := ParseScenario(data, path)
		if parseErr != nil {
			if ve, ok := parseErr.(ValidationErrors); ok {
				vErrs = append(vErrs, ve...)
				continue
			}
			return nil, parseErr
		}
		if prev, exists := seen[s.Name]; exists {
			vErrs = append(vErrs, ValidationError{
				File:    path,
				Field:   "scenario",
				Message: fmt.Sprintf("scenario %q already defined in %s", s.Name, prev),
			})
			continue
		}
		seen[s.Name] = path
		out = append(out, s)
	}
	if len(vErrs) > 0 {
		return nil, vErrs
	}
	return out, nil
}

// FindScenario returns the scenario with the given name.
func FindScenario(scenarios []Scenario, name string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Scenario{}, false
}

func yamlFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func sortedCounts(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
