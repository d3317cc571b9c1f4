package plancache

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"goapforge/internal/goap"
)

// costScale quantises action costs to integer milli-units before hashing.
const costScale = 1000

// Key identifies a cached plan.
//
// StateHash is bucketed: it covers which facts the start state knows, not
// their values, so states with the same known facts share a bucket even when
// the values differ. A hit may therefore return a plan computed for different
// values. GoalHash is exact.
type Key struct {
	StateHash   uint64
	GoalHash    uint64
	ActionCount int
}

// NewKey fingerprints a planning request.
func NewKey(state goap.WorldState, goal goap.Goal, actions []goap.Action) Key {
	return Key{
		StateHash:   StateBucketHash(state),
		GoalHash:    StateHash(goal.Desired),
		ActionCount: len(actions),
	}
}

// StateBucketHash hashes the fact ids known in state, ignoring values.
func StateBucketHash(state goap.WorldState) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 4)
	state.Range(func(id goap.FactID, _ bool) bool {
		buf = binary.LittleEndian.AppendUint32(buf[:0], uint32(id))
		_, _ = h.Write(buf)
		return true
	})
	return h.Sum64()
}

// StateHash hashes every (fact id, value) pair of state.
func StateHash(state goap.WorldState) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 5)
	state.Range(func(id goap.FactID, value bool) bool {
		buf = binary.LittleEndian.AppendUint32(buf[:0], uint32(id))
		if value {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		_, _ = h.Write(buf)
		return true
	})
	return h.Sum64()
}

// ActionSetHash hashes action names and quantised costs in order. A change in
// any name or cost changes the hash.
func ActionSetHash(actions []goap.Action) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 8)
	for _, a := range actions {
		_, _ = h.Write([]byte(a.Name))
		// Separator so ("ab","c") and ("a","bc") differ.
		_, _ = h.Write([]byte{0})
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(quantiseCost(a.Cost)))
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}

func quantiseCost(cost float32) int64 {
	return int64(math.Round(float64(cost) * costScale))
}
