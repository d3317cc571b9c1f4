// Package actionset loads GOAP domains and scenarios from YAML.
//
// A domain declares facts, sensors, actions and goals; a scenario picks a
// domain and goal and describes the start conditions. Documents are checked
// against embedded JSON schemas first and then against field rules; every
// problem in every file is reported as a ValidationErrors value.
package actionset
