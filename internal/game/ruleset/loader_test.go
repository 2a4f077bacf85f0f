package ruleset_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charforge/internal/game/ruleset"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestKind_Matches(t *testing.T) {
	assert.True(t, ruleset.KindRace.Matches("elf.race.yaml"))
	assert.True(t, ruleset.KindRace.Matches("elf.race.yml"))
	assert.False(t, ruleset.KindRace.Matches("elf.yaml"))
	assert.False(t, ruleset.KindRace.Matches("elf.default_traits.yaml"))
	assert.True(t, ruleset.KindAltTrait.Matches("arcane_focus.alt_trait.yaml"))
}

func TestLoadRaces_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "races", "elf.race.yaml"), `
id: elf
name: Elf
plural: Elves
summary: "Long-lived and graceful."
languages: [Common, Elven]
bonus_languages: [Sylvan]
names: [Lialda]
`)
	races, err := ruleset.LoadRaces(dir)
	require.NoError(t, err)
	require.Len(t, races, 1)
	r := races[0]
	assert.Equal(t, "elf", r.ID)
	assert.Equal(t, "Elves", r.DisplayPlural())
	assert.Equal(t, []string{"Common", "Elven"}, r.Languages)
	assert.Equal(t, []string{"Sylvan"}, r.BonusLanguages)
}

func TestLoadRaces_IgnoresOtherKinds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "elf.race.yaml"), "id: elf\nname: Elf\n")
	writeFile(t, filepath.Join(dir, "elf.default_traits.yaml"), "race: elf\ntraits: []\n")
	races, err := ruleset.LoadRaces(dir)
	require.NoError(t, err)
	assert.Len(t, races, 1)
}

func TestLoadRaces_RejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "elf.race.yaml"), "id: elf\nname: Elf\nwingspan: 3\n")
	_, err := ruleset.LoadRaces(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wingspan")
}

func TestLoadRaces_MissingName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "elf.race.yaml"), "id: elf\n")
	_, err := ruleset.LoadRaces(dir)
	require.Error(t, err)
}

func TestLoadRaces_Plural_DefaultsToNamePlusS(t *testing.T) {
	r := &ruleset.Race{ID: "gnome", Name: "Gnome"}
	assert.Equal(t, "Gnomes", r.DisplayPlural())
}

func TestLoadDefaultTraits_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "elf.default_traits.yaml"), `
race: elf
traits:
  - id: KeenSenses
    name: Keen Senses
    category: senses
    description: "+2 Perception."
  - id: ElvenMagic
    name: Elven Magic
    category: magic
    description: "+2 to overcome spell resistance."
`)
	lists, err := ruleset.LoadDefaultTraits(dir)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, "elf", lists[0].Race)
	assert.Equal(t, []string{"KeenSenses", "ElvenMagic"}, lists[0].IDs())
}

func TestLoadDefaultTraits_DuplicateTrait(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "elf.default_traits.yaml"), `
race: elf
traits:
  - id: KeenSenses
  - id: KeenSenses
`)
	_, err := ruleset.LoadDefaultTraits(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate trait")
}

func TestLoadAltTraits_ParsesScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "night_eyes.alt_trait.yaml"), `
id: NightEyes
race: elf
name: Night Eyes
replaces: [LowLightVision]
script: |
  grant.sense("darkvision", 30)
`)
	alts, err := ruleset.LoadAltTraits(dir)
	require.NoError(t, err)
	require.Len(t, alts, 1)
	a := alts[0]
	assert.True(t, a.Scripted())
	assert.Equal(t, []string{"LowLightVision"}, a.Replaces)
	assert.Contains(t, a.Script, "darkvision")
}

func TestLoadAltTraits_RequiresReplaces(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.alt_trait.yaml"), "id: X\nrace: elf\nname: X\n")
	_, err := ruleset.LoadAltTraits(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replaces")
}

func TestLoadClasses_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "fighter.class.yaml"), `
id: fighter
name: Fighter
hit_die: 10
skill_ranks: 2
bab: full
good_saves: [fortitude]
class_skills: [Climb, Swim]
features:
  - name: Bravery
    level: 2
  - name: Bonus Feat
    level: 1
`)
	classes, err := ruleset.LoadClasses(dir)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	c := classes[0]
	assert.Equal(t, 10, c.HitDie)
	assert.True(t, c.IsClassSkill("Climb"))
	assert.False(t, c.IsClassSkill("Stealth"))
	sorted := c.SortedFeatures()
	require.Len(t, sorted, 2)
	assert.Equal(t, "Bonus Feat", sorted[0].Name)
	assert.Len(t, c.FeaturesAt(2), 1)
}

func TestLoadClasses_InvalidHitDie(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.class.yaml"), "id: x\nname: X\nhit_die: 7\nskill_ranks: 2\nbab: full\n")
	_, err := ruleset.LoadClasses(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hit_die")
}

func TestLoadClasses_InvalidBAB(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.class.yaml"), "id: x\nname: X\nhit_die: 8\nskill_ranks: 2\nbab: fast\n")
	_, err := ruleset.LoadClasses(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bab")
}

func TestLoadClasses_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.class.yaml"), "id: [unterminated\n")
	_, err := ruleset.LoadClasses(dir)
	require.Error(t, err)
}

func TestLoadClasses_EmptyDir(t *testing.T) {
	classes, err := ruleset.LoadClasses(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestLoadFavoredClassOptions_InvalidKind(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.favored_class.yaml"), "id: x\nrace: elf\nclass: wizard\nkind: gold\n")
	_, err := ruleset.LoadFavoredClassOptions(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind")
}

func TestClass_BaseAttack(t *testing.T) {
	cases := []struct {
		bab   string
		level int
		want  int
	}{
		{ruleset.BABFull, 1, 1},
		{ruleset.BABFull, 20, 20},
		{ruleset.BABThreeQuarter, 1, 0},
		{ruleset.BABThreeQuarter, 4, 3},
		{ruleset.BABThreeQuarter, 20, 15},
		{ruleset.BABHalf, 1, 0},
		{ruleset.BABHalf, 20, 10},
	}
	for _, tc := range cases {
		c := &ruleset.Class{BAB: tc.bab}
		assert.Equal(t, tc.want, c.BaseAttack(tc.level), "%s at %d", tc.bab, tc.level)
	}
}

func TestClass_BaseSave(t *testing.T) {
	c := &ruleset.Class{GoodSaves: []string{"fortitude"}}
	assert.Equal(t, 2, c.BaseSave("fortitude", 1))
	assert.Equal(t, 0, c.BaseSave("reflex", 1))
	assert.Equal(t, 12, c.BaseSave("fortitude", 20))
	assert.Equal(t, 6, c.BaseSave("will", 20))
}

// Property: base attack never decreases with level and full is never behind half.
func TestProperty_Class_BaseAttackMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		level := rapid.IntRange(1, 19).Draw(rt, "level")
		for _, p := range []string{ruleset.BABFull, ruleset.BABThreeQuarter, ruleset.BABHalf} {
			c := &ruleset.Class{BAB: p}
			if c.BaseAttack(level+1) < c.BaseAttack(level) {
				rt.Fatalf("%s decreased from level %d", p, level)
			}
		}
		full := &ruleset.Class{BAB: ruleset.BABFull}
		half := &ruleset.Class{BAB: ruleset.BABHalf}
		if full.BaseAttack(level) < half.BaseAttack(level) {
			rt.Fatalf("full progression behind half at level %d", level)
		}
	})
}

// Property: every loaded class file keeps its id and hit die.
func TestProperty_LoadClasses_RoundTripsFields(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "n")
		die := rapid.SampledFrom([]int{6, 8, 10, 12}).Draw(rt, "die")
		dir := t.TempDir()
		for i := 0; i < n; i++ {
			content := fmt.Sprintf("id: class_%d\nname: Class %d\nhit_die: %d\nskill_ranks: 2\nbab: half\n", i, i, die)
			if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("class_%d.class.yaml", i)), []byte(content), 0644); err != nil {
				rt.Fatal(err)
			}
		}
		classes, err := ruleset.LoadClasses(dir)
		if err != nil {
			rt.Fatal(err)
		}
		if len(classes) != n {
			rt.Fatalf("loaded %d classes, want %d", len(classes), n)
		}
		for _, c := range classes {
			if c.HitDie != die {
				rt.Fatalf("class %s hit die %d, want %d", c.ID, c.HitDie, die)
			}
		}
	})
}
