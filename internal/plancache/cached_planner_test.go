package plancache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"goapforge/internal/goap"
)

func TestCachedPlannerServesRepeatRequestsFromCache(t *testing.T) {
	f := newFixture()
	cp := NewCachedPlanner(16)

	plan, ok, detail := cp.PlanDetailed(f.state, f.goal, f.actions)
	require.True(t, ok)
	require.False(t, detail.FromCache)
	require.Equal(t, goap.OutcomeSolved, detail.Search.Outcome)
	require.Equal(t, []string{"gather_herbs", "craft_food"}, goap.ActionNames(plan))

	again, ok, detail := cp.PlanDetailed(f.state, f.goal, f.actions)
	require.True(t, ok)
	require.True(t, detail.FromCache)
	require.Equal(t, goap.ActionNames(plan), goap.ActionNames(again))

	stats := cp.CacheStats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
}

func TestCachedPlannerCachesEmptyPlans(t *testing.T) {
	f := newFixture()
	cp := NewCachedPlanner(4)
	done := f.in.State(goap.Fact{Name: "has_food", Value: true})

	plan, ok := cp.Plan(done, f.goal, f.actions)
	require.True(t, ok)
	require.Empty(t, plan)
	require.Equal(t, 1, cp.Cache().Len())

	plan, ok = cp.Plan(done, f.goal, f.actions)
	require.True(t, ok)
	require.Empty(t, plan)
	require.Equal(t, uint64(1), cp.CacheStats().Hits)
}

func TestCachedPlannerDoesNotCacheFailures(t *testing.T) {
	in := goap.NewInterner()
	goal := goap.NewGoal("escape", in.State(goap.Fact{Name: "escaped", Value: true}))
	actions := []goap.Action{
		goap.NewAction("walk").
			WithPrecondition(in.Intern("free"), true).
			WithEffect(in.Intern("escaped"), true),
	}
	cp := NewCachedPlanner(4)

	_, ok, detail := cp.PlanDetailed(goap.WorldState{}, goal, actions)
	require.False(t, ok)
	require.Equal(t, goap.OutcomeExhausted, detail.Search.Outcome)
	require.True(t, cp.Cache().IsEmpty())

	_, ok = cp.Plan(goap.WorldState{}, goal, actions)
	require.False(t, ok)
	require.Equal(t, uint64(2), cp.CacheStats().Misses)
}

func TestCachedPlannerReplansAfterCostChange(t *testing.T) {
	in := goap.NewInterner()
	goal := goap.NewGoal("done", in.State(goap.Fact{Name: "done", Value: true}))
	actions := []goap.Action{
		goap.NewAction("fast").WithCost(1).WithEffect(in.Intern("done"), true),
		goap.NewAction("slow").WithCost(5).WithEffect(in.Intern("done"), true),
	}
	cp := NewCachedPlanner(4, goap.WithMaxIterations(50))
	require.Equal(t, 50, cp.BasePlanner().MaxIterations())

	plan, ok := cp.Plan(goap.WorldState{}, goal, actions)
	require.True(t, ok)
	require.Equal(t, []string{"fast"}, goap.ActionNames(plan))

	actions[0] = actions[0].WithCost(10)
	plan, ok, detail := cp.PlanDetailed(goap.WorldState{}, goal, actions)
	require.True(t, ok)
	require.False(t, detail.FromCache)
	require.Equal(t, []string{"slow"}, goap.ActionNames(plan))
	require.Equal(t, uint64(1), cp.CacheStats().Invalidations)

	cp.ClearCache()
	require.Equal(t, Stats{}, cp.CacheStats())
	require.True(t, cp.Cache().IsEmpty())
}

func TestCachedPlannerInvalidateForcesSearch(t *testing.T) {
	f := newFixture()
	cp := NewCachedPlanner(4)
	_, ok := cp.Plan(f.state, f.goal, f.actions)
	require.True(t, ok)

	require.True(t, cp.Invalidate(f.state, f.goal, f.actions))
	require.False(t, cp.Invalidate(f.state, f.goal, f.actions))

	_, ok, detail := cp.PlanDetailed(f.state, f.goal, f.actions)
	require.True(t, ok)
	require.False(t, detail.FromCache)
	require.Equal(t, uint64(1), cp.CacheStats().Invalidations)
}
