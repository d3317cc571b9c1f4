package goap

import (
	"fmt"
	"sort"
)

// FactID identifies an interned fact name.
type FactID uint32

// Fact is a named fact with a value, used when building states from names.
type Fact struct {
	Name  string
	Value bool
}

// Interner maps fact names to dense FactIDs in first-intern order.
//
// An Interner is owned by the caller and is not safe for concurrent use.
// States built from different interners must not be mixed.
type Interner struct {
	ids   map[string]FactID
	names []string
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]FactID)}
}

// Intern returns the id for name, assigning the next free id on first use.
func (in *Interner) Intern(name string) FactID {
	if id, ok := in.ids[name]; ok {
		return id
	}
	id := FactID(len(in.names))
	in.ids[name] = id
	in.names = append(in.names, name)
	return id
}

// InternSorted interns every name in lexical order. Use it when the input
// order is not itself deterministic (map keys, for instance).
func (in *Interner) InternSorted(names []string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		in.Intern(name)
	}
}

// Lookup returns the id for name without interning it.
func (in *Interner) Lookup(name string) (FactID, bool) {
	id, ok := in.ids[name]
	return id, ok
}

// Name returns the fact name for id.
func (in *Interner) Name(id FactID) string {
	if int(id) < len(in.names) {
		return in.names[id]
	}
	return fmt.Sprintf("fact#%d", id)
}

// Names returns all interned names in id order.
func (in *Interner) Names() []string {
	return append([]string(nil), in.names...)
}

// Len reports how many facts have been interned.
func (in *Interner) Len() int {
	return len(in.names)
}

// State builds a WorldState from named facts, interning names as needed.
// Later facts override earlier ones with the same name.
func (in *Interner) State(facts ...Fact) WorldState {
	var s WorldState
	for _, f := range facts {
		s.Set(in.Intern(f.Name), f.Value)
	}
	return s
}

// StateFromMap builds a WorldState from a name->value map. Unseen names are
// interned in sorted order so ids do not depend on map iteration.
func (in *Interner) StateFromMap(facts map[string]bool) WorldState {
	names := make([]string, 0, len(facts))
	for name := range facts {
		names = append(names, name)
	}
	in.InternSorted(names)
	var s WorldState
	for _, name := range names {
		s.Set(in.ids[name], facts[name])
	}
	return s
}
