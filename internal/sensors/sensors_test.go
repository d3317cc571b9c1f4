package sensors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"goapforge/internal/goap"
)

func TestEvaluateDerivesFactsInRuleOrder(t *testing.T) {
	set, err := Compile([]Rule{
		{Fact: "hungry", When: "hunger > 50"},
		{Fact: "armed", When: `weapon != "" && ammo > 0`},
		{Fact: "night", When: "hour >= 20 || hour < 6"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	require.Equal(t, []string{"hungry", "armed", "night"}, set.Facts())

	facts, err := set.Evaluate(map[string]any{
		"hunger": 80,
		"weapon": "bow",
		"ammo":   0,
		"hour":   22,
	})
	require.NoError(t, err)
	require.Equal(t, []goap.Fact{
		{Name: "hungry", Value: true},
		{Name: "armed", Value: false},
		{Name: "night", Value: true},
	}, facts)
}

func TestCompileRejectsInvalidRules(t *testing.T) {
	_, err := Compile([]Rule{{Fact: "broken", When: "hunger >"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")

	_, err = Compile([]Rule{{Fact: "", When: "true"}})
	require.Error(t, err)

	_, err = Compile([]Rule{{Fact: "x", When: "  "}})
	require.Error(t, err)

	_, err = Compile([]Rule{
		{Fact: "hungry", When: "hunger > 50"},
		{Fact: "hungry", When: "hunger > 10"},
	})
	require.ErrorContains(t, err, "already has a sensor")
}

func TestEvaluateWrapsRuntimeErrors(t *testing.T) {
	set, err := Compile([]Rule{{Fact: "hungry", When: "hunger > 50"}})
	require.NoError(t, err)

	_, err = set.Evaluate(map[string]any{"hunger": "very"})
	require.Error(t, err)
	require.Contains(t, err.Error(), `sensor "hungry"`)
}

func TestEvaluateOnNilSet(t *testing.T) {
	var set *Set
	facts, err := set.Evaluate(map[string]any{"a": 1})
	require.NoError(t, err)
	require.Empty(t, facts)
	require.Zero(t, set.Len())
}

func TestEvaluateWithEmptyBlackboard(t *testing.T) {
	set := MustCompile([]Rule{{Fact: "always", When: "true"}})
	facts, err := set.Evaluate(nil)
	require.NoError(t, err)
	require.Equal(t, []goap.Fact{{Name: "always", Value: true}}, facts)
}
