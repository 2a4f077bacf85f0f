package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/charforge/internal/game/ruleset"
)

// LoadLibrary loads the content tree under root and rejects it unless
// ValidateLibrary passes.
//
// Postcondition: Returns a Library the engine can build every core race and
// class from, or a load or validation error.
func LoadLibrary(root string) (*ruleset.Library, error) {
	lib, err := ruleset.LoadLibrary(root)
	if err != nil {
		return nil, err
	}
	if err := ValidateLibrary(lib); err != nil {
		return nil, fmt.Errorf("content %s: %w", root, err)
	}
	return lib, nil
}

// ValidateLibrary checks lib's cross references and then checks it against
// the races, classes, archetypes and traits the engine knows: every core id
// has content, every content id is known, every archetype modifies the class
// it is declared for and every default trait has a built-in effect.
//
// Postcondition: Returns nil, or one error joining every violation.
func ValidateLibrary(lib *ruleset.Library) error {
	var errs []error
	if err := lib.Validate(); err != nil {
		errs = append(errs, err)
	}

	for _, r := range AllRaces() {
		if _, err := lib.Race(string(r)); err != nil {
			errs = append(errs, fmt.Errorf("core race %q has no content", r))
		}
	}
	for _, c := range AllClasses() {
		if _, err := lib.Class(string(c)); err != nil {
			errs = append(errs, fmt.Errorf("core class %q has no content", c))
		}
	}
	for _, a := range AllArchetypes() {
		if _, err := lib.Archetype(string(a)); err != nil {
			errs = append(errs, fmt.Errorf("archetype %q has no content", a))
		}
	}

	for _, r := range lib.Races() {
		if _, err := ParsePlayableRace(r.ID); err != nil {
			errs = append(errs, fmt.Errorf("race %q is not a playable race", r.ID))
			continue
		}
		d, err := lib.DefaultTraitsFor(r.ID)
		if err != nil {
			continue
		}
		for _, id := range d.IDs() {
			if !RacialTraitName(id).Known() {
				errs = append(errs, fmt.Errorf("default trait %q of %q has no built-in effect", id, r.ID))
			}
		}
	}
	for _, c := range lib.Classes() {
		class, err := ParsePlayableClass(c.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("class %q is not a playable class", c.ID))
			continue
		}
		for _, a := range lib.ArchetypesFor(c.ID) {
			name, err := ParseArchetypeName(a.ID)
			if err != nil {
				errs = append(errs, fmt.Errorf("archetype %q is not a supported archetype", a.ID))
				continue
			}
			if name.Class() != class {
				errs = append(errs, fmt.Errorf("archetype %q is declared for %q but modifies %q", a.ID, class, name.Class()))
			}
		}
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}
