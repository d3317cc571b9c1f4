package goap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chain builds n actions where step i requires step i-1 to be done.
func chain(in *Interner, n int) ([]Action, Goal) {
	actions := make([]Action, 0, n)
	for i := 1; i <= n; i++ {
		a := NewAction(fmt.Sprintf("step_%03d", i)).WithEffect(in.Intern(fmt.Sprintf("done_%03d", i)), true)
		if i > 1 {
			a = a.WithPrecondition(in.Intern(fmt.Sprintf("done_%03d", i-1)), true)
		}
		actions = append(actions, a)
	}
	goal := NewGoal("finish", in.State(Fact{fmt.Sprintf("done_%03d", n), true}))
	return actions, goal
}

func forager(in *Interner) ([]Action, Goal) {
	actions := []Action{
		NewAction("gather_herbs").WithCost(5).WithEffect(in.Intern("has_herbs"), true),
		NewAction("craft_food").WithCost(3).
			WithPrecondition(in.Intern("has_herbs"), true).
			WithEffect(in.Intern("has_food"), true),
		NewAction("expensive_direct").WithCost(20).WithEffect(in.Intern("has_food"), true),
	}
	return actions, NewGoal("eat", in.State(Fact{"has_food", true}))
}

func TestSatisfiedGoalReturnsEmptyPlanWithoutSearch(t *testing.T) {
	in := NewInterner()
	state := in.State(Fact{"goal_met", true})
	goal := NewGoal("done", in.State(Fact{"goal_met", true}))

	res := NewPlanner().Search(state, goal, nil)
	require.Equal(t, OutcomeSolved, res.Outcome)
	require.NotNil(t, res.Actions)
	require.Empty(t, res.Actions)
	require.Zero(t, res.Iterations)
	require.Zero(t, res.Nodes)

	plan, ok := NewPlanner().Plan(state, goal, nil)
	require.True(t, ok)
	require.Empty(t, plan)
}

func TestPlannerFindsSingleStepPlan(t *testing.T) {
	in := NewInterner()
	state := in.State(Fact{"has_key", true})
	goal := NewGoal("open_door", in.State(Fact{"door_open", true}))
	actions := []Action{
		NewAction("open_door").
			WithPrecondition(in.Intern("has_key"), true).
			WithEffect(in.Intern("door_open"), true),
	}

	plan, ok := NewPlanner().Plan(state, goal, actions)
	require.True(t, ok)
	require.Equal(t, []string{"open_door"}, ActionNames(plan))
}

func TestPlannerFindsMultiStepPlan(t *testing.T) {
	in := NewInterner()
	state := in.State(Fact{"at_home", true})
	goal := NewGoal("have_sword", in.State(Fact{"has_sword", true}))
	actions := []Action{
		NewAction("buy_sword").
			WithPrecondition(in.Intern("at_shop"), true).
			WithEffect(in.Intern("has_sword"), true),
		NewAction("go_to_shop").
			WithPrecondition(in.Intern("at_home"), true).
			WithEffect(in.Intern("at_home"), false).
			WithEffect(in.Intern("at_shop"), true),
	}

	plan, ok := NewPlanner().Plan(state, goal, actions)
	require.True(t, ok)
	require.Equal(t, []string{"go_to_shop", "buy_sword"}, ActionNames(plan))
}

func TestPlannerReturnsCheapestPlan(t *testing.T) {
	in := NewInterner()
	actions, goal := forager(in)

	res := NewPlanner().Search(WorldState{}, goal, actions)
	require.Equal(t, OutcomeSolved, res.Outcome)
	require.Equal(t, []string{"gather_herbs", "craft_food"}, ActionNames(res.Actions))
	require.InDelta(t, 8.0, res.Cost, 1e-6)
	require.InDelta(t, 8.0, TotalCost(res.Actions), 1e-6)
}

func TestPlannerPrefersLowerCost(t *testing.T) {
	in := NewInterner()
	state := in.State(Fact{"start", true})
	goal := NewGoal("goal", in.State(Fact{"done", true}))
	actions := []Action{
		NewAction("expensive").WithPrecondition(in.Intern("start"), true).WithEffect(in.Intern("done"), true).WithCost(10),
		NewAction("cheap").WithPrecondition(in.Intern("start"), true).WithEffect(in.Intern("done"), true).WithCost(1),
	}

	plan, ok := NewPlanner().Plan(state, goal, actions)
	require.True(t, ok)
	require.Equal(t, []string{"cheap"}, ActionNames(plan))
}

func TestPlannerIsDeterministic(t *testing.T) {
	build := func() ([]Action, Goal) {
		in := NewInterner()
		var actions []Action
		// Many equal-cost routes to the goal.
		for _, name := range []string{"delta", "alpha", "charlie", "bravo"} {
			actions = append(actions,
				NewAction(name+"_prep").WithEffect(in.Intern(name+"_ready"), true),
				NewAction(name+"_finish").
					WithPrecondition(in.Intern(name+"_ready"), true).
					WithEffect(in.Intern("done"), true),
			)
		}
		return actions, NewGoal("done", in.State(Fact{"done", true}))
	}

	actions, goal := build()
	first, ok := NewPlanner().Plan(WorldState{}, goal, actions)
	require.True(t, ok)
	require.Equal(t, []string{"alpha_prep", "alpha_finish"}, ActionNames(first))

	for i := 0; i < 50; i++ {
		actions, goal := build()
		again, ok := NewPlanner().Plan(WorldState{}, goal, actions)
		require.True(t, ok)
		require.Equal(t, ActionNames(first), ActionNames(again))
	}
}

func TestTieBreakByActionName(t *testing.T) {
	in := NewInterner()
	goal := NewGoal("done", in.State(Fact{"done", true}))
	actions := []Action{
		NewAction("b_action").WithEffect(in.Intern("done"), true),
		NewAction("a_action").WithEffect(in.Intern("done"), true),
	}

	plan, ok := NewPlanner().Plan(WorldState{}, goal, actions)
	require.True(t, ok)
	require.Equal(t, []string{"a_action"}, ActionNames(plan))
}

func TestTieBreakPrefersShallowerPlans(t *testing.T) {
	in := NewInterner()
	goal := NewGoal("done", in.State(Fact{"done", true}))
	actions := []Action{
		NewAction("a_step1").WithEffect(in.Intern("half"), true),
		NewAction("a_step2").WithPrecondition(in.Intern("half"), true).WithEffect(in.Intern("done"), true),
		NewAction("z_direct").WithCost(2).WithEffect(in.Intern("done"), true),
	}

	res := NewPlanner().Search(WorldState{}, goal, actions)
	require.True(t, res.Solved())
	require.InDelta(t, 2.0, res.Cost, 1e-6)
	require.Equal(t, []string{"z_direct"}, ActionNames(res.Actions))
}

func TestIterationCapAborts(t *testing.T) {
	in := NewInterner()
	actions, goal := chain(in, 100)

	plan, ok := NewPlanner(WithMaxIterations(10)).Plan(WorldState{}, goal, actions)
	require.False(t, ok)
	require.Nil(t, plan)

	res := NewPlanner(WithMaxIterations(10)).Search(WorldState{}, goal, actions)
	require.Equal(t, OutcomeCapExceeded, res.Outcome)
	require.Equal(t, 11, res.Iterations)

	full := NewPlanner().Search(WorldState{}, goal, actions)
	require.True(t, full.Solved())
	require.Len(t, full.Actions, 100)
	require.Equal(t, "step_001", full.Actions[0].Name)
	require.Equal(t, "step_100", full.Actions[99].Name)
}

func TestIterationCapBoundary(t *testing.T) {
	in := NewInterner()
	actions, goal := chain(in, 5)

	// A straight chain of n actions needs n expansions.
	require.True(t, NewPlanner(WithMaxIterations(5)).Search(WorldState{}, goal, actions).Solved())
	require.Equal(t, OutcomeCapExceeded, NewPlanner(WithMaxIterations(4)).Search(WorldState{}, goal, actions).Outcome)
}

func TestUnsatisfiablePreconditionYieldsNoPlan(t *testing.T) {
	in := NewInterner()
	state := in.State(Fact{"trapped", true})
	goal := NewGoal("escape", in.State(Fact{"escaped", true}))
	actions := []Action{
		NewAction("walk").WithPrecondition(in.Intern("not_trapped"), true).WithEffect(in.Intern("escaped"), true),
	}

	plan, ok := NewPlanner().Plan(state, goal, actions)
	require.False(t, ok)
	require.Nil(t, plan)

	res := NewPlanner().Search(state, goal, actions)
	require.Equal(t, OutcomeExhausted, res.Outcome)
	require.Equal(t, 1, res.Iterations)
}

func TestMaxIterationsOption(t *testing.T) {
	assert.Equal(t, DefaultMaxIterations, NewPlanner().MaxIterations())
	assert.Equal(t, 25, NewPlanner(WithMaxIterations(25)).MaxIterations())
	assert.Equal(t, DefaultMaxIterations, NewPlanner(WithMaxIterations(0)).MaxIterations())
	assert.Equal(t, DefaultMaxIterations, NewPlanner(WithMaxIterations(-3)).MaxIterations())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "solved", OutcomeSolved.String())
	assert.Equal(t, "exhausted", OutcomeExhausted.String())
	assert.Equal(t, "cap_exceeded", OutcomeCapExceeded.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
