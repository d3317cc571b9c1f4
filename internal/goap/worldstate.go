package goap

import (
	"sort"
	"strings"
)

type factEntry struct {
	id    FactID
	value bool
}

// WorldState is a symbolic snapshot of boolean facts.
//
// Facts absent from the state are unknown, not false. Entries are kept sorted
// by FactID so iteration, hashing and comparison are deterministic. The zero
// value is an empty state.
type WorldState struct {
	facts []factEntry
}

// NewWorldState returns an empty state with room for n facts.
func NewWorldState(n int) WorldState {
	return WorldState{facts: make([]factEntry, 0, n)}
}

func (s WorldState) search(id FactID) (int, bool) {
	i := sort.Search(len(s.facts), func(i int) bool { return s.facts[i].id >= id })
	return i, i < len(s.facts) && s.facts[i].id == id
}

// Set records value for id, overwriting any existing value.
func (s *WorldState) Set(id FactID, value bool) {
	i, found := s.search(id)
	if found {
		s.facts[i].value = value
		return
	}
	s.facts = append(s.facts, factEntry{})
	copy(s.facts[i+1:], s.facts[i:])
	s.facts[i] = factEntry{id: id, value: value}
}

// Get returns the value for id and whether it is known.
func (s WorldState) Get(id FactID) (value bool, known bool) {
	i, found := s.search(id)
	if !found {
		return false, false
	}
	return s.facts[i].value, true
}

// Len reports the number of known facts.
func (s WorldState) Len() int {
	return len(s.facts)
}

// IsEmpty reports whether no facts are known.
func (s WorldState) IsEmpty() bool {
	return len(s.facts) == 0
}

// Satisfies reports whether every fact in other is present in s with the same
// value. Facts in s that other does not mention are ignored.
func (s WorldState) Satisfies(other WorldState) bool {
	i := 0
	for _, want := range other.facts {
		for i < len(s.facts) && s.facts[i].id < want.id {
			i++
		}
		if i == len(s.facts) || s.facts[i].id != want.id || s.facts[i].value != want.value {
			return false
		}
	}
	return true
}

// DistanceTo counts the facts of goal that s does not currently match.
// DistanceTo(goal) == 0 exactly when s.Satisfies(goal).
func (s WorldState) DistanceTo(goal WorldState) int {
	missing := 0
	i := 0
	for _, want := range goal.facts {
		for i < len(s.facts) && s.facts[i].id < want.id {
			i++
		}
		if i == len(s.facts) || s.facts[i].id != want.id || s.facts[i].value != want.value {
			missing++
		}
	}
	return missing
}

// Apply overwrites s with every fact in effects.
func (s *WorldState) Apply(effects WorldState) {
	if len(effects.facts) == 0 {
		return
	}
	merged := make([]factEntry, 0, len(s.facts)+len(effects.facts))
	i, j := 0, 0
	for i < len(s.facts) && j < len(effects.facts) {
		switch a, b := s.facts[i], effects.facts[j]; {
		case a.id < b.id:
			merged = append(merged, a)
			i++
		case a.id > b.id:
			merged = append(merged, b)
			j++
		default:
			merged = append(merged, b)
			i++
			j++
		}
	}
	merged = append(merged, s.facts[i:]...)
	merged = append(merged, effects.facts[j:]...)
	s.facts = merged
}

// Clone returns a copy that shares no storage with s.
func (s WorldState) Clone() WorldState {
	if s.facts == nil {
		return WorldState{}
	}
	return WorldState{facts: append(make([]factEntry, 0, len(s.facts)), s.facts...)}
}

// Equal reports whether both states know exactly the same facts and values.
func (s WorldState) Equal(other WorldState) bool {
	return s.Compare(other) == 0
}

// Compare orders states lexicographically by (id, value) entries, shorter
// states first on a common prefix. It is a total order.
func (s WorldState) Compare(other WorldState) int {
	n := min(len(s.facts), len(other.facts))
	for k := 0; k < n; k++ {
		a, b := s.facts[k], other.facts[k]
		if a.id != b.id {
			if a.id < b.id {
				return -1
			}
			return 1
		}
		if a.value != b.value {
			if !a.value {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(s.facts) < len(other.facts):
		return -1
	case len(s.facts) > len(other.facts):
		return 1
	}
	return 0
}

// Range calls fn for every fact in id order until fn returns false.
func (s WorldState) Range(fn func(id FactID, value bool) bool) {
	for _, f := range s.facts {
		if !fn(f.id, f.value) {
			return
		}
	}
}

// Keys returns the known fact ids in ascending order.
func (s WorldState) Keys() []FactID {
	keys := make([]FactID, len(s.facts))
	for i, f := range s.facts {
		keys[i] = f.id
	}
	return keys
}

// Names returns the state as a name->value map.
func (s WorldState) Names(in *Interner) map[string]bool {
	out := make(map[string]bool, len(s.facts))
	for _, f := range s.facts {
		out[in.Name(f.id)] = f.value
	}
	return out
}

// Format renders the state as "{a=true, b=false}" in id order.
func (s WorldState) Format(in *Interner) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range s.facts {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(in.Name(f.id))
		if f.value {
			b.WriteString("=true")
		} else {
			b.WriteString("=false")
		}
	}
	b.WriteByte('}')
	return b.String()
}
