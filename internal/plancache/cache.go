package plancache

import (
	"container/list"

	"goapforge/internal/goap"
)

// DefaultCapacity is the capacity used when none (or a non-positive one) is
// given.
const DefaultCapacity = 1000

// Stats holds cumulative cache counters.
type Stats struct {
	Hits          uint64 `json:"hits"`
	Misses        uint64 `json:"misses"`
	Evictions     uint64 `json:"evictions"`
	Invalidations uint64 `json:"invalidations"`
}

// TotalAccesses returns hits + misses.
func (s Stats) TotalAccesses() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns hits / (hits + misses), or 0 before any access.
func (s Stats) HitRate() float64 {
	total := s.TotalAccesses()
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// CachedPlan is a stored plan with the fingerprint of the action set it was
// computed from.
type CachedPlan struct {
	Actions    []goap.Action
	ActionHash uint64
	Hits       uint64
}

type entry struct {
	key  Key
	plan CachedPlan
}

// PlanCache is a bounded LRU of plans keyed by Key.
//
// PlanCache is not safe for concurrent use.
type PlanCache struct {
	capacity int
	entries  map[Key]*list.Element
	order    *list.List // front is least recently used
	stats    Stats
}

// New returns a cache holding at most capacity plans. A non-positive capacity
// selects DefaultCapacity.
func New(capacity int) *PlanCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &PlanCache{
		capacity: capacity,
		entries:  make(map[Key]*list.Element),
		order:    list.New(),
	}
}

// Get returns a deep copy of the plan cached for the request.
//
// An entry whose action-set hash differs from the current actions is evicted,
// counted as an invalidation, and reported as a miss.
func (c *PlanCache) Get(state goap.WorldState, goal goap.Goal, actions []goap.Action) ([]goap.Action, bool) {
	key := NewKey(state, goal, actions)
	el, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	ent := el.Value.(*entry)
	if ent.plan.ActionHash != ActionSetHash(actions) {
		c.remove(el)
		c.stats.Invalidations++
		c.stats.Misses++
		return nil, false
	}

	c.stats.Hits++
	ent.plan.Hits++
	c.order.MoveToBack(el)
	return cloneActions(ent.plan.Actions), true
}

// Put stores plan for the request, evicting the least recently used entry
// when a new key arrives at capacity.
func (c *PlanCache) Put(state goap.WorldState, goal goap.Goal, actions []goap.Action, plan []goap.Action) {
	key := NewKey(state, goal, actions)
	cached := CachedPlan{
		Actions:    cloneActions(plan),
		ActionHash: ActionSetHash(actions),
	}

	if el, ok := c.entries[key]; ok {
		el.Value.(*entry).plan = cached
		c.order.MoveToBack(el)
		return
	}

	if len(c.entries) >= c.capacity {
		if oldest := c.order.Front(); oldest != nil {
			c.remove(oldest)
			c.stats.Evictions++
		}
	}
	c.entries[key] = c.order.PushBack(&entry{key: key, plan: cached})
}

// Remove drops the entry for the request and counts it as an invalidation.
// It reports whether an entry was stored.
func (c *PlanCache) Remove(state goap.WorldState, goal goap.Goal, actions []goap.Action) bool {
	el, ok := c.entries[NewKey(state, goal, actions)]
	if !ok {
		return false
	}
	c.remove(el)
	c.stats.Invalidations++
	return true
}

// Peek returns the stored entry for key without touching LRU order or stats.
func (c *PlanCache) Peek(key Key) (CachedPlan, bool) {
	el, ok := c.entries[key]
	if !ok {
		return CachedPlan{}, false
	}
	return el.Value.(*entry).plan, true
}

// cloneActions copies plan down to the state backing arrays, so neither the
// caller nor the cache can mutate the other's actions.
func cloneActions(plan []goap.Action) []goap.Action {
	out := make([]goap.Action, len(plan))
	for i, a := range plan {
		a.Preconditions = a.Preconditions.Clone()
		a.Effects = a.Effects.Clone()
		out[i] = a
	}
	return out
}

func (c *PlanCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry).key)
}

// Len returns the number of cached plans.
func (c *PlanCache) Len() int {
	return len(c.entries)
}

// IsEmpty reports whether the cache holds no plans.
func (c *PlanCache) IsEmpty() bool {
	return len(c.entries) == 0
}

// Capacity returns the maximum number of cached plans.
func (c *PlanCache) Capacity() int {
	return c.capacity
}

// Stats returns the cumulative counters.
func (c *PlanCache) Stats() Stats {
	return c.stats
}

// Clear drops every entry and resets the counters.
func (c *PlanCache) Clear() {
	c.entries = make(map[Key]*list.Element)
	c.order.Init()
	c.stats = Stats{}
}
