package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	lua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charforge/internal/scripting"
)

func TestSandbox_OnlyPureLibraries(t *testing.T) {
	sb := scripting.NewSandbox(0)
	defer sb.Close()

	for _, name := range []string{"os", "io", "debug", "package", "dofile", "loadfile", "load", "loadstring", "require"} {
		assert.Equal(t, lua.LNil, sb.L.GetGlobal(name), "%s must not be reachable", name)
	}
	assert.NoError(t, sb.L.DoString(`
		assert(math.floor(7 / 2) == 3)
		assert(string.lower("Keen Senses") == "keen senses")
		local t = {}
		table.insert(t, "darkvision")
		assert(#t == 1)
	`))
}

func TestSandbox_BudgetStopsRunawayScript(t *testing.T) {
	sb := scripting.NewSandbox(10)
	defer sb.Close()

	assert.Error(t, sb.L.DoString(`while true do end`))
	assert.Zero(t, sb.Remaining())
}

func TestSandbox_BudgetIsSpent(t *testing.T) {
	sb := scripting.NewSandbox(0)
	defer sb.Close()

	assert.NoError(t, sb.L.DoString(`local bonus = 1 + 1`))
	assert.Less(t, sb.Remaining(), int64(scripting.DefaultInstructionLimit))
	assert.Positive(t, sb.Remaining())
}

func TestProperty_AnyBudgetStopsInfiniteLoop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(1, 200).Draw(t, "limit")
		sb := scripting.NewSandbox(limit)
		defer sb.Close()
		if err := sb.L.DoString(`local n = 0 while true do n = n + 1 end`); err == nil {
			t.Fatalf("limit %d: runaway script completed", limit)
		}
	})
}
