package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/dice"
	"github.com/cory-johannsen/charforge/internal/game/rules"
)

type sheetOptions struct {
	name       string
	race       string
	class      string
	traits     []string
	archetypes []string
	favored    string
	method     string
	seed       int64
	scores     map[string]int
	floating   map[string]string
	feats      map[string]string
	bonuses    bool
}

func newSheetCmd(opts *options) *cobra.Command {
	so := &sheetOptions{}
	cmd := &cobra.Command{
		Use:   "sheet",
		Short: "Build a level 1 character sheet offline",
		Long: `Build a sheet from the given choices. Rolled methods assign the totals
in rolled order to STR, DEX, CON, INT, WIS and CHA; --score overrides any of them.

  Example: charctl sheet --race human --class fighter --trait DualTalent \
             --float DualTalent=str --float DualTalent#2=con --method standard --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.env()
			if err != nil {
				return err
			}
			return buildSheet(cmd.OutOrStdout(), e, so)
		},
	}
	f := cmd.Flags()
	f.StringVar(&so.name, "name", "", "character name")
	f.StringVar(&so.race, "race", "", "race id (required)")
	f.StringVar(&so.class, "class", "", "class id (required)")
	f.StringSliceVar(&so.traits, "trait", nil, "alternate racial trait id (repeatable)")
	f.StringSliceVar(&so.archetypes, "archetype", nil, "archetype id (repeatable)")
	f.StringVar(&so.favored, "favored", "", "favored class option id")
	f.StringVar(&so.method, "method", "", "roll scores: standard, classic or heroic")
	f.Int64Var(&so.seed, "seed", 0, "seed for reproducible rolls (0 uses crypto randomness)")
	f.StringToIntVar(&so.scores, "score", nil, "ability score, e.g. --score str=16")
	f.StringToStringVar(&so.floating, "float", nil, "floating bonus choice, e.g. --float HumanAbilityModifiers=str")
	f.StringToStringVar(&so.feats, "feat", nil, "bonus feat choice, e.g. --feat BonusFeat=Power Attack")
	f.BoolVar(&so.bonuses, "bonuses", false, "also print every bonus container")
	_ = cmd.MarkFlagRequired("race")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

// choices turns the flags into engine choices, rolling with roller when a
// method is given.
func (so *sheetOptions) choices(roller *dice.Roller) (rules.Choices, []dice.RollResult, error) {
	c := rules.Choices{
		Name:          so.name,
		Race:          so.race,
		Class:         so.class,
		AltTraits:     so.traits,
		Archetypes:    so.archetypes,
		FavoredOption: so.favored,
		BonusFeats:    so.feats,
	}
	scores := character.DefaultAbilityScores()
	var rolls []dice.RollResult
	if so.method != "" {
		m, err := dice.ParseMethod(so.method)
		if err != nil {
			return c, nil, err
		}
		c.Method = string(m)
		rolls, err = roller.RollAbilities(m)
		if err != nil {
			return c, nil, err
		}
		for i, a := range character.Abilities() {
			scores.Set(a, rolls[i].Total())
		}
	}
	for k, v := range so.scores {
		a, err := character.ParseAbility(k)
		if err != nil {
			return c, nil, err
		}
		scores.Set(a, v)
	}
	c.Abilities = &scores
	for key, v := range so.floating {
		a, err := character.ParseAbility(v)
		if err != nil {
			return c, nil, err
		}
		if c.FloatingAbility == nil {
			c.FloatingAbility = make(map[string]character.Ability)
		}
		c.FloatingAbility[key] = a
	}
	return c, rolls, nil
}

func buildSheet(w io.Writer, e *env, so *sheetOptions) error {
	src := dice.NewCryptoSource()
	if so.seed != 0 {
		src = dice.NewSeededSource(so.seed)
	}
	c, rolls, err := so.choices(dice.NewLoggedRoller(src, e.logger))
	if err != nil {
		return err
	}
	if len(rolls) > 0 {
		parts := make([]string, len(rolls))
		for i, r := range rolls {
			parts[i] = r.String()
		}
		fmt.Fprintf(w, "Rolled: %s\n", strings.Join(parts, ", "))
	}

	b, err := e.engine.Assemble(c)
	if err != nil {
		return err
	}
	sheet, err := character.Derive(b)
	if err != nil {
		return err
	}
	fmt.Fprint(w, character.FormatSheet(sheet))
	if so.bonuses {
		fmt.Fprint(w, character.FormatBonuses(b))
	}
	return nil
}
