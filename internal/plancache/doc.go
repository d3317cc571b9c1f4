// Package plancache memoises GOAP plans in a bounded LRU keyed by a
// fingerprint of the start state, the goal and the action set size.
//
// Entries also carry a hash of the action names and costs they were computed
// against. A lookup whose current action set hashes differently evicts the
// entry instead of returning a stale plan.
package plancache
