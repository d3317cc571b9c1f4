package actionset

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"goapforge/internal/goap"
	"goapforge/internal/sensors"
)

type rawDomain struct {
	Domain  string      `yaml:"domain"`
	Facts   []string    `yaml:"facts"`
	Sensors []rawSensor `yaml:"sensors"`
	Actions []rawAction `yaml:"actions"`
	Goals   []rawGoal   `yaml:"goals"`
}

type rawSensor struct {
	Fact string `yaml:"fact"`
	When string `yaml:"when"`
}

type rawAction struct {
	Name          string          `yaml:"name"`
	Cost          *float64        `yaml:"cost"`
	Preconditions map[string]bool `yaml:"preconditions"`
	Effects       map[string]bool `yaml:"effects"`
}

type rawGoal struct {
	Name     string          `yaml:"name"`
	Priority *float64        `yaml:"priority"`
	Desired  map[string]bool `yaml:"desired"`
}

type rawScenario struct {
	Scenario      string          `yaml:"scenario"`
	Domain        string          `yaml:"domain"`
	Goal          string          `yaml:"goal"`
	State         map[string]bool `yaml:"state"`
	Blackboard    map[string]any  `yaml:"blackboard"`
	FailActions   map[string]int  `yaml:"fail_actions"`
	MaxIterations int             `yaml:"max_iterations"`
}

// ValidationError captures a single field-specific validation issue.
type ValidationError struct {
	File    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// ParseDomain validates a YAML domain document against the domain schema and
// the field rules, and resolves it into a Domain.
func ParseDomain(data []byte, source string) (*Domain, error) {
	if err := compileSchemas(); err != nil {
		return nil, err
	}
	if errs := checkSchema(domainSchema, data, source); len(errs) > 0 {
		return nil, errs
	}
	var raw rawDomain
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, ValidationErrors{{File: source, Field: "yaml", Message: err.Error()}}
	}
	return validateRawDomain(raw, source)
}

// ParseScenario validates a YAML scenario document.
func ParseScenario(data []byte, source string) (Scenario, error) {
	if err := compileSchemas(); err != nil {
		return Scenario{}, err
	}
	if errs := checkSchema(scenarioSchema, data, source); len(errs) > 0 {
		return Scenario{}, errs
	}
	var raw rawScenario
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Scenario{}, ValidationErrors{{File: source, Field: "yaml", Message: err.Error()}}
	}
	return Scenario{
		Name:          strings.TrimSpace(raw.Scenario),
		Domain:        strings.TrimSpace(raw.Domain),
		Goal:          strings.TrimSpace(raw.Goal),
		State:         copyFacts(raw.State),
		Blackboard:    raw.Blackboard,
		FailActions:   raw.FailActions,
		MaxIterations: raw.MaxIterations,
		Source:        source,
	}, nil
}

func validateRawDomain(raw rawDomain, source string) (*Domain, error) {
	var errs ValidationErrors
	fail := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{File: source, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	d := &Domain{
		Name:   strings.TrimSpace(raw.Domain),
		Source: source,
	}
	if d.Name == "" {
		fail("domain", "domain name is required")
	}

	vocab := make(map[string]struct{}, len(raw.Facts))
	for i, f := range raw.Facts {
		f = strings.TrimSpace(f)
		if _, dup := vocab[f]; dup {
			fail(fmt.Sprintf("facts[%d]", i), "fact %q declared twice", f)
			continue
		}
		vocab[f] = struct{}{}
		d.Facts = append(d.Facts, f)
	}
	checkFact := func(field, fact string) {
		if strings.TrimSpace(fact) == "" {
			fail(field, "fact name cannot be empty")
			return
		}
		if len(vocab) > 0 {
			if _, ok := vocab[fact]; !ok {
				fail(field, "fact %q is not declared in facts", fact)
			}
		}
	}

	sensorFacts := make(map[string]struct{}, len(raw.Sensors))
	for i, s := range raw.Sensors {
		path := fmt.Sprintf("sensors[%d]", i)
		rule := sensors.Rule{Fact: strings.TrimSpace(s.Fact), When: s.When}
		checkFact(path+".fact", rule.Fact)
		if _, dup := sensorFacts[rule.Fact]; dup {
			fail(path+".fact", "fact %q already has a sensor", rule.Fact)
			continue
		}
		sensorFacts[rule.Fact] = struct{}{}
		if _, err := sensors.Compile([]sensors.Rule{rule}); err != nil {
			fail(path+".when", "%v", err)
			continue
		}
		d.SensorRules = append(d.SensorRules, rule)
	}

	actionNames := make(map[string]struct{}, len(raw.Actions))
	for i, a := range raw.Actions {
		path := fmt.Sprintf("actions[%d]", i)
		spec := ActionSpec{
			Name:          strings.TrimSpace(a.Name),
			Cost:          goap.DefaultActionCost,
			Preconditions: copyFacts(a.Preconditions),
			Effects:       copyFacts(a.Effects),
		}
		if spec.Name == "" {
			fail(path+".name", "action name is required")
		} else if _, dup := actionNames[spec.Name]; dup {
			fail(path+".name", "duplicate action name %q", spec.Name)
		} else {
			actionNames[spec.Name] = struct{}{}
		}
		if a.Cost != nil {
			if *a.Cost < 0 {
				fail(path+".cost", "cost must be >= 0")
			}
			spec.Cost = float32(*a.Cost)
		}
		for _, fact := range sortedKeys(spec.Preconditions) {
			checkFact(path+".preconditions."+fact, fact)
		}
		for _, fact := range sortedKeys(spec.Effects) {
			checkFact(path+".effects."+fact, fact)
		}
		d.ActionSpecs = append(d.ActionSpecs, spec)
	}

	goalNames := make(map[string]struct{}, len(raw.Goals))
	for i, g := range raw.Goals {
		path := fmt.Sprintf("goals[%d]", i)
		spec := GoalSpec{
			Name:    strings.TrimSpace(g.Name),
			Desired: copyFacts(g.Desired),
		}
		if spec.Name == "" {
			fail(path+".name", "goal name is required")
		} else if _, dup := goalNames[spec.Name]; dup {
			fail(path+".name", "duplicate goal name %q", spec.Name)
		} else {
			goalNames[spec.Name] = struct{}{}
		}
		if g.Priority != nil {
			spec.Priority = float32(*g.Priority)
		}
		if len(spec.Desired) == 0 {
			fail(path+".desired", "desired state must name at least one fact")
		}
		for _, fact := range sortedKeys(spec.Desired) {
			checkFact(path+".desired."+fact, fact)
		}
		d.GoalSpecs = append(d.GoalSpecs, spec)
	}

	if len(errs) > 0 {
		return nil, errs
	}

	d.sensors = sensors.MustCompile(d.SensorRules)
	d.resolve()
	return d, nil
}

// resolve interns the vocabulary and builds goap actions and goals.
func (d *Domain) resolve() {
	in := goap.NewInterner()
	for _, f := range d.Facts {
		in.Intern(f)
	}
	var referenced []string
	for _, r := range d.SensorRules {
		referenced = append(referenced, r.Fact)
	}
	for _, a := range d.ActionSpecs {
		referenced = append(referenced, sortedKeys(a.Preconditions)...)
		referenced = append(referenced, sortedKeys(a.Effects)...)
	}
	for _, g := range d.GoalSpecs {
		referenced = append(referenced, sortedKeys(g.Desired)...)
	}
	in.InternSorted(referenced)

	d.interner = in
	d.actions = make([]goap.Action, 0, len(d.ActionSpecs))
	for _, spec := range d.ActionSpecs {
		d.actions = append(d.actions, goap.Action{
			Name:          spec.Name,
			Cost:          spec.Cost,
			Preconditions: in.StateFromMap(spec.Preconditions),
			Effects:       in.StateFromMap(spec.Effects),
		})
	}
	d.goals = make([]goap.Goal, 0, len(d.GoalSpecs))
	for _, spec := range d.GoalSpecs {
		d.goals = append(d.goals, goap.NewGoal(spec.Name, in.StateFromMap(spec.Desired)).WithPriority(spec.Priority))
	}
}

func copyFacts(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
