// Package goap implements Goal-Oriented Action Planning over boolean facts.
//
// A WorldState is a sorted set of (FactID, bool) pairs; fact names are mapped
// to ids by a caller-owned Interner. Actions transform states, Goals describe
// desired states, and Planner searches for the cheapest action sequence with
// A*. The heuristic counts unmet goal facts. Searches are deterministic:
// identical input yields an identical plan.
//
// Plan is a cursor that sequences a resolved plan while the caller executes
// it. Caching lives in package plancache.
package goap
