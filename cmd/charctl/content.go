package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/charforge/internal/game/rules"
)

func newContentCmd(opts *options) *cobra.Command {
	content := &cobra.Command{
		Use:   "content",
		Short: "Inspect the rules content tree",
	}
	content.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load every content file and check cross references and trait scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.env()
			if err != nil {
				return err
			}
			return validateContent(cmd.OutOrStdout(), e)
		},
	})
	return content
}

// validateContent reports counts, then every problem found: broken cross
// references, ids the rules engine does not know and failing trait scripts.
// Alternate traits with no built-in effect and no script are warnings.
func validateContent(w io.Writer, e *env) error {
	c := e.lib.Counts()
	fmt.Fprintf(w, "races %d, default trait lists %d, alt traits %d, classes %d, archetypes %d, favored class options %d\n",
		c.Races, c.DefaultTraits, c.AltTraits, c.Classes, c.Archetypes, c.FavoredClass)

	errs := []error{rules.ValidateLibrary(e.lib)}
	for _, r := range e.lib.Races() {
		for _, a := range e.lib.AltTraitsFor(r.ID) {
			if a.Scripted() {
				if err := e.runner.Check(a.ID, a.Script); err != nil {
					errs = append(errs, fmt.Errorf("alt trait %q: %w", a.ID, err))
				}
				continue
			}
			if !rules.RacialTraitName(a.ID).Known() {
				fmt.Fprintf(w, "warning: alt trait %q has no built-in effect and no script\n", a.ID)
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	fmt.Fprintln(w, "content OK")
	return nil
}

func newRacesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "races",
		Short: "List the playable races",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.env()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range e.lib.Races() {
				fmt.Fprintf(w, "%-10s %-10s %s\n", r.ID, r.Name, r.Summary)
			}
			return nil
		},
	}
}

func newTraitsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "traits <race>",
		Short: "List a race's default and alternate traits with their effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.env()
			if err != nil {
				return err
			}
			return listTraits(cmd.OutOrStdout(), e, args[0])
		},
	}
}

func listTraits(w io.Writer, e *env, race string) error {
	r, err := e.lib.Race(race)
	if err != nil {
		return err
	}
	d, err := e.lib.DefaultTraitsFor(r.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s traits:\n", r.Name)
	for _, t := range d.Traits {
		fmt.Fprintf(w, "  %s\n", t.Name)
		writeEffects(w, t.ID)
	}
	alts := e.lib.AltTraitsFor(r.ID)
	if len(alts) == 0 {
		return nil
	}
	fmt.Fprintf(w, "Alternate traits:\n")
	for _, a := range alts {
		fmt.Fprintf(w, "  %s (replaces %s)\n", a.Name, strings.Join(a.Replaces, ", "))
		if a.Scripted() {
			fmt.Fprintf(w, "      scripted\n")
			continue
		}
		writeEffects(w, a.ID)
	}
	return nil
}

func writeEffects(w io.Writer, id string) {
	name, err := rules.ParseRacialTraitName(id)
	if err != nil {
		return
	}
	lines, err := rules.Describe(name)
	if err != nil {
		return
	}
	for _, l := range lines {
		fmt.Fprintf(w, "      %s\n", l)
	}
}
