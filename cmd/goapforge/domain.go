package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"goapforge/internal/actionset"
)

func runDomain(args []string, g globalFlags) error {
	if missingSubcommand(args) {
		return fmt.Errorf("%s domain: missing subcommand (validate, lint)", appName)
	}
	switch args[0] {
	case "validate":
		return runDomainValidate(args[1:], g)
	case "lint":
		return runDomainLint(args[1:], g)
	default:
		return fmt.Errorf("%s domain: unknown subcommand %q", appName, args[0])
	}
}

func runDomainValidate(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("domain validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.close()

	catalog, err := actionset.LoadDomains(a.ws.DomainsDir)
	if err != nil {
		return err
	}
	scenarios, err := actionset.LoadScenarios(a.ws.ScenariosDir)
	if err != nil {
		return err
	}
	var errs actionset.ValidationErrors
	for _, sc := range scenarios {
		if err := catalog.CheckScenario(sc); err != nil {
			var verrs actionset.ValidationErrors
			if !errors.As(err, &verrs) {
				return err
			}
			errs = append(errs, verrs...)
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for _, d := range catalog.Domains() {
		fmt.Fprintf(os.Stdout, "ok  domain %s (%d actions, %d goals, %d sensors)\n",
			d.Name, len(d.ActionSpecs), len(d.GoalSpecs), len(d.SensorRules))
	}
	for _, sc := range scenarios {
		fmt.Fprintf(os.Stdout, "ok  scenario %s -> %s/%s\n", sc.Name, sc.Domain, sc.Goal)
	}
	return nil
}

func runDomainLint(args []string, g globalFlags) error {
	fs := flag.NewFlagSet("domain lint", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	only := fs.String("domain", "", "Lint a single domain by name")
	strict := fs.Bool("strict", false, "Fail on warnings as well as errors")
	if err := fs.Parse(args); err != nil {
		return err
	}
	a, err := newApp(g)
	if err != nil {
		return err
	}
	defer a.close()

	catalog, err := actionset.LoadDomains(a.ws.DomainsDir)
	if err != nil {
		return err
	}
	domains := catalog.Domains()
	if *only != "" {
		d, ok := catalog.Domain(*only)
		if !ok {
			return fmt.Errorf("unknown domain: %s", *only)
		}
		domains = []*actionset.Domain{d}
	}

	failed := false
	for _, d := range domains {
		issues := actionset.Lint(d)
		if len(issues) == 0 {
			fmt.Fprintf(os.Stdout, "%s: clean\n", d.Name)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: %d issue(s)\n", d.Name, len(issues))
		for _, issue := range issues {
			fmt.Fprintf(os.Stdout, "  %s\n", issue)
			if issue.Severity == actionset.SeverityError || (*strict && issue.Severity == actionset.SeverityWarning) {
				failed = true
			}
		}
	}
	if failed {
		return fmt.Errorf("domain lint failed")
	}
	return nil
}
