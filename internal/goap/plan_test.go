package goap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanCursorAdvancesToCompletion(t *testing.T) {
	plan := NewPlan([]Action{NewAction("a"), NewAction("b"), NewAction("c")})

	cur, ok := plan.Current()
	require.True(t, ok)
	require.Equal(t, "a", cur.Name)
	require.Equal(t, []string{"b", "c"}, ActionNames(plan.Remaining()))
	require.False(t, plan.IsComplete())

	for i := 0; i < 3; i++ {
		require.False(t, plan.IsComplete())
		plan.Advance()
	}

	require.True(t, plan.IsComplete())
	require.Equal(t, []string{"a", "b", "c"}, ActionNames(plan.Completed()))
	_, ok = plan.Current()
	require.False(t, ok)

	// Advancing a finished plan is a no-op.
	_, ok = plan.Advance()
	require.False(t, ok)
	require.Len(t, plan.Completed(), 3)
}

func TestPlanAdvanceReturnsNextAction(t *testing.T) {
	plan := NewPlan([]Action{NewAction("a"), NewAction("b")})
	next, ok := plan.Advance()
	require.True(t, ok)
	require.Equal(t, "b", next.Name)
}

func TestEmptyPlanIsComplete(t *testing.T) {
	plan := NewPlan(nil)
	require.True(t, plan.IsComplete())
	require.Empty(t, plan.Completed())
}

func TestInvalidateKeepsHistory(t *testing.T) {
	plan := NewPlan([]Action{NewAction("a"), NewAction("b"), NewAction("c")})
	plan.Advance()
	plan.Invalidate()

	require.True(t, plan.IsComplete())
	require.Empty(t, plan.Remaining())
	require.Equal(t, []string{"a"}, ActionNames(plan.Completed()))
}

func TestPlanCopiesInput(t *testing.T) {
	actions := []Action{NewAction("a"), NewAction("b")}
	plan := NewPlan(actions)
	actions[1] = NewAction("changed")
	require.Equal(t, []string{"b"}, ActionNames(plan.Remaining()))
}
