package goap

import "strings"

// node is one A* frontier entry. Nodes live in an arena and refer to their
// parent by index, so path reconstruction never copies the state chain.
type node struct {
	state  WorldState
	parent int // -1 at the root
	action int // index into the action slice, -1 at the root
	g      float32
	h      int
	depth  int
}

func (n *node) f() float32 {
	return n.g + float32(n.h)
}

type arena struct {
	nodes   []node
	actions []Action
}

func (a *arena) push(state WorldState, parent, action int, g float32, h, depth int) int {
	a.nodes = append(a.nodes, node{
		state:  state,
		parent: parent,
		action: action,
		g:      g,
		h:      h,
		depth:  depth,
	})
	return len(a.nodes) - 1
}

// compare orders frontier entries by f, then depth, then the name of the
// producing action (the root sorts first), then arena index.
func (a *arena) compare(x, y any) int {
	i, j := x.(int), y.(int)
	ni, nj := &a.nodes[i], &a.nodes[j]

	if fi, fj := ni.f(), nj.f(); fi != fj {
		if fi < fj {
			return -1
		}
		return 1
	}
	if ni.depth != nj.depth {
		if ni.depth < nj.depth {
			return -1
		}
		return 1
	}
	if c := a.compareActionNames(ni.action, nj.action); c != 0 {
		return c
	}
	switch {
	case i < j:
		return -1
	case i > j:
		return 1
	}
	return 0
}

func (a *arena) compareActionNames(ai, aj int) int {
	switch {
	case ai < 0 && aj < 0:
		return 0
	case ai < 0:
		return -1
	case aj < 0:
		return 1
	}
	return strings.Compare(a.actions[ai].Name, a.actions[aj].Name)
}

// path walks parent links from idx back to the root and returns the actions
// in execution order.
func (a *arena) path(idx int) []Action {
	var reversed []Action
	for n := &a.nodes[idx]; n.parent >= 0; n = &a.nodes[n.parent] {
		reversed = append(reversed, a.actions[n.action])
	}
	plan := make([]Action, len(reversed))
	for i, act := range reversed {
		plan[len(reversed)-1-i] = act
	}
	return plan
}

func compareStates(x, y any) int {
	return x.(WorldState).Compare(y.(WorldState))
}
