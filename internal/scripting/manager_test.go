package scripting_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charforge/internal/scripting"
)

type recordingGrants struct {
	calls []string
	fail  error
}

func (g *recordingGrants) Skill(skill, bonusType string, value int, condition string) error {
	g.calls = append(g.calls, fmt.Sprintf("skill %s %s %d %q", skill, bonusType, value, condition))
	return g.fail
}

func (g *recordingGrants) Ability(ability, bonusType string, value int) error {
	g.calls = append(g.calls, fmt.Sprintf("ability %s %s %d", ability, bonusType, value))
	return g.fail
}

func (g *recordingGrants) Save(save, bonusType string, value int, condition string) error {
	g.calls = append(g.calls, fmt.Sprintf("save %s %s %d %q", save, bonusType, value, condition))
	return g.fail
}

func (g *recordingGrants) Language(name string) error {
	g.calls = append(g.calls, "language "+name)
	return g.fail
}

func (g *recordingGrants) Sense(sense string, feet int) error {
	g.calls = append(g.calls, fmt.Sprintf("sense %s %d", sense, feet))
	return g.fail
}

func newTestRunner(t testing.TB, limit int) (*scripting.Runner, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return scripting.NewRunner(limit, zap.New(core)), logs
}

func TestRunner_Run_CallsGrants(t *testing.T) {
	r, _ := newTestRunner(t, 0)
	g := &recordingGrants{}
	err := r.Run("StarlitWanderer", `
		grant.skill("perception", "racial", 2)
		grant.skill("survival", "racial", 2, "at night")
		grant.ability("dexterity", "racial", 2)
		grant.save("will", "racial", 1, "vs illusions")
		grant.language("Sylvan")
		grant.sense("low_light_vision", 0)
	`, g)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`skill perception racial 2 ""`,
		`skill survival racial 2 "at night"`,
		`ability dexterity racial 2`,
		`save will racial 1 "vs illusions"`,
		`language Sylvan`,
		`sense low_light_vision 0`,
	}, g.calls)
}

func TestRunner_Run_GrantErrorRaisedInScript(t *testing.T) {
	r, logs := newTestRunner(t, 0)
	g := &recordingGrants{fail: errors.New("unknown skill")}
	err := r.Run("Broken", `grant.skill("basket_weaving", "racial", 2)`, g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grant.skill: unknown skill")
	assert.Equal(t, 1, logs.FilterMessage("scripting: trait script failed").Len())
}

func TestRunner_Run_ArgumentTypeError(t *testing.T) {
	r, _ := newTestRunner(t, 0)
	err := r.Run("Bad", `grant.skill("perception", "racial", "two")`, &recordingGrants{})
	assert.Error(t, err)
}

func TestRunner_Run_InstructionLimit(t *testing.T) {
	r, _ := newTestRunner(t, 50)
	err := r.Run("Loop", `while true do end`, &recordingGrants{})
	assert.Error(t, err)
}

func TestRunner_Run_FreshStatePerRun(t *testing.T) {
	r, _ := newTestRunner(t, 0)
	require.NoError(t, r.Run("A", `leaked = 1`, &recordingGrants{}))
	err := r.Run("B", `assert(leaked == nil, "state leaked")`, &recordingGrants{})
	assert.NoError(t, err)
}

func TestRunner_Run_NoUnsafeLibs(t *testing.T) {
	r, _ := newTestRunner(t, 0)
	err := r.Run("Escape", `os.execute("true")`, &recordingGrants{})
	assert.Error(t, err)
}

func TestRunner_Check(t *testing.T) {
	r, _ := newTestRunner(t, 0)
	assert.NoError(t, r.Check("Ok", `grant.language("Elven")`))
	assert.Error(t, r.Check("Bad", `grant.language(`))
}

func TestRunner_ConcurrentRuns(t *testing.T) {
	r, _ := newTestRunner(t, 0)
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.Run("Par", `grant.skill("stealth", "racial", 2)`, &recordingGrants{})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestRunTraitScript(t *testing.T) {
	g := &recordingGrants{}
	require.NoError(t, scripting.RunTraitScript(`grant.language("Gnome")`, g))
	assert.Equal(t, []string{"language Gnome"}, g.calls)
}

func TestProperty_SkillValuesPassThrough(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.IntRange(-10, 10).Draw(rt, "value")
		g := &recordingGrants{}
		src := fmt.Sprintf(`grant.skill("climb", "competence", %d)`, v)
		if err := scripting.RunTraitScript(src, g); err != nil {
			rt.Fatalf("run: %v", err)
		}
		want := fmt.Sprintf(`skill climb competence %d ""`, v)
		if len(g.calls) != 1 || g.calls[0] != want {
			rt.Fatalf("got %v, want %s", g.calls, want)
		}
	})
}
