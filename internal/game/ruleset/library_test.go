package ruleset_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/charforge/internal/game/ruleset"
)

const contentRoot = "../../../content"

func loadContent(t *testing.T) *ruleset.Library {
	t.Helper()
	lib, err := ruleset.LoadLibrary(contentRoot)
	require.NoError(t, err)
	return lib
}

func TestLoadLibrary_ActualContent(t *testing.T) {
	lib := loadContent(t)
	c := lib.Counts()
	assert.Equal(t, 7, c.Races)
	assert.Equal(t, 7, c.DefaultTraits)
	assert.Equal(t, 11, c.Classes)
	assert.Equal(t, 15, c.Archetypes)
	assert.GreaterOrEqual(t, c.AltTraits, 20)
	assert.NotZero(t, c.FavoredClass)
	require.NoError(t, lib.Validate())
}

func TestLoadLibrary_MissingDir(t *testing.T) {
	_, err := ruleset.LoadLibrary(t.TempDir())
	require.Error(t, err)
}

func TestLibrary_Races_SortedByName(t *testing.T) {
	lib := loadContent(t)
	races := lib.Races()
	require.NotEmpty(t, races)
	for i := 1; i < len(races); i++ {
		assert.LessOrEqual(t, races[i-1].Name, races[i].Name)
	}
}

func TestLibrary_Race_NotFound(t *testing.T) {
	lib := loadContent(t)
	_, err := lib.Race("tiefling")
	assert.True(t, errors.Is(err, ruleset.ErrNotFound))
}

func TestLibrary_DefaultTraitsFor_Dwarf(t *testing.T) {
	lib := loadContent(t)
	d, err := lib.DefaultTraitsFor("dwarf")
	require.NoError(t, err)
	ids := d.IDs()
	assert.Equal(t, "DwarfAbilityModifiers", ids[0])
	assert.Contains(t, ids, "Hardy")
	assert.Contains(t, ids, "Stability")
	assert.NotContains(t, ids, "AncientEnmity")
}

func TestLibrary_AltTraitsFor_SortedAndScoped(t *testing.T) {
	lib := loadContent(t)
	alts := lib.AltTraitsFor("elf")
	require.NotEmpty(t, alts)
	for i, a := range alts {
		assert.Equal(t, "elf", a.Race)
		if i > 0 {
			assert.LessOrEqual(t, alts[i-1].Name, a.Name)
		}
	}
	assert.Empty(t, lib.AltTraitsFor("tiefling"))
}

func TestLibrary_TraitDescription(t *testing.T) {
	lib := loadContent(t)
	d, err := lib.TraitDescription("elf", "KeenSenses")
	require.NoError(t, err)
	assert.Equal(t, "Keen Senses", d.Name)

	d, err = lib.TraitDescription("elf", "ArcaneFocus")
	require.NoError(t, err)
	assert.Equal(t, "Arcane Focus", d.Name)

	_, err = lib.TraitDescription("dwarf", "ArcaneFocus")
	assert.True(t, errors.Is(err, ruleset.ErrNotFound))
}

func TestLibrary_ArchetypesFor_Fighter(t *testing.T) {
	lib := loadContent(t)
	archs := lib.ArchetypesFor("fighter")
	require.Len(t, archs, 2)
	assert.Equal(t, "archer", archs[0].ID)
	assert.Equal(t, "two_handed_fighter", archs[1].ID)
}

func TestLibrary_FavoredClassOptions_StandardFirst(t *testing.T) {
	lib := loadContent(t)
	opts := lib.FavoredClassOptions("dwarf", "fighter")
	require.GreaterOrEqual(t, len(opts), 3)
	assert.Equal(t, ruleset.FavoredHitPoint, opts[0].Kind)
	assert.Equal(t, ruleset.FavoredSkillRank, opts[1].Kind)
	assert.Equal(t, ruleset.FavoredRacial, opts[2].Kind)

	opts = lib.FavoredClassOptions("elf", "monk")
	assert.Len(t, opts, 2)
}

func TestNewLibrary_DuplicateRace(t *testing.T) {
	r := &ruleset.Race{ID: "elf", Name: "Elf"}
	_, err := ruleset.NewLibrary([]*ruleset.Race{r, r}, nil, nil, nil, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate race")
}

func TestLibrary_Validate_ReportsEveryViolation(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, ruleset.DescriptionsDir)
	writeFile(t, filepath.Join(base, "elf.race.yaml"), "id: elf\nname: Elf\n")
	writeFile(t, filepath.Join(base, "orc.default_traits.yaml"), "race: orc\ntraits: [{id: Ferocity}]\n")
	writeFile(t, filepath.Join(base, "x.alt_trait.yaml"), "id: X\nrace: orc\nname: X\nreplaces: [Missing]\n")
	writeFile(t, filepath.Join(base, "x.archetype.yaml"), "id: x\nclass: alchemist\nname: X\n")

	lib, err := ruleset.LoadLibrary(dir)
	require.NoError(t, err)
	err = lib.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `default traits reference unknown race "orc"`)
	assert.Contains(t, msg, `race "elf" has no default traits`)
	assert.Contains(t, msg, `replaces "Missing"`)
	assert.Contains(t, msg, `unknown class "alchemist"`)
}
