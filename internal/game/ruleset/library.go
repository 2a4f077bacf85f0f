package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Library is the complete, indexed set of loaded content. It is immutable
// after LoadLibrary returns and safe for concurrent readers.
type Library struct {
	races         map[string]*Race
	defaultTraits map[string]*DefaultTraits
	altTraits     map[string]*AltTrait
	classes       map[string]*Class
	archetypes    map[string]*Archetype
	favored       []*FavoredClassOption
}

// Counts summarises how many items of each kind a Library holds.
type Counts struct {
	Races         int
	DefaultTraits int
	AltTraits     int
	Classes       int
	Archetypes    int
	FavoredClass  int
}

// LoadLibrary loads every content kind under root/text/descriptions in
// parallel and indexes the results.
//
// Precondition: root must contain a text/descriptions directory.
// Postcondition: Returns a populated Library or the first load/index error.
func LoadLibrary(root string) (*Library, error) {
	dir := filepath.Join(root, DescriptionsDir)
	if info, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("content directory %s: %w", dir, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("content directory %s is not a directory", dir)
	}

	var (
		races    []*Race
		defaults []*DefaultTraits
		alts     []*AltTrait
		classes  []*Class
		archs    []*Archetype
		favored  []*FavoredClassOption
	)
	var g errgroup.Group
	g.Go(func() (err error) { races, err = LoadRaces(dir); return })
	g.Go(func() (err error) { defaults, err = LoadDefaultTraits(dir); return })
	g.Go(func() (err error) { alts, err = LoadAltTraits(dir); return })
	g.Go(func() (err error) { classes, err = LoadClasses(dir); return })
	g.Go(func() (err error) { archs, err = LoadArchetypes(dir); return })
	g.Go(func() (err error) { favored, err = LoadFavoredClassOptions(dir); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewLibrary(races, defaults, alts, classes, archs, favored)
}

// NewLibrary indexes already-loaded content.
//
// Postcondition: Returns a Library or an error naming the first duplicate id.
func NewLibrary(
	races []*Race,
	defaults []*DefaultTraits,
	alts []*AltTrait,
	classes []*Class,
	archetypes []*Archetype,
	favored []*FavoredClassOption,
) (*Library, error) {
	lib := &Library{
		races:         make(map[string]*Race, len(races)),
		defaultTraits: make(map[string]*DefaultTraits, len(defaults)),
		altTraits:     make(map[string]*AltTrait, len(alts)),
		classes:       make(map[string]*Class, len(classes)),
		archetypes:    make(map[string]*Archetype, len(archetypes)),
		favored:       favored,
	}
	for _, r := range races {
		if _, dup := lib.races[r.ID]; dup {
			return nil, fmt.Errorf("duplicate race id %q", r.ID)
		}
		lib.races[r.ID] = r
	}
	for _, d := range defaults {
		if _, dup := lib.defaultTraits[d.Race]; dup {
			return nil, fmt.Errorf("duplicate default traits for race %q", d.Race)
		}
		lib.defaultTraits[d.Race] = d
	}
	for _, a := range alts {
		if _, dup := lib.altTraits[a.ID]; dup {
			return nil, fmt.Errorf("duplicate alt trait id %q", a.ID)
		}
		lib.altTraits[a.ID] = a
	}
	for _, c := range classes {
		if _, dup := lib.classes[c.ID]; dup {
			return nil, fmt.Errorf("duplicate class id %q", c.ID)
		}
		lib.classes[c.ID] = c
	}
	for _, a := range archetypes {
		if _, dup := lib.archetypes[a.ID]; dup {
			return nil, fmt.Errorf("duplicate archetype id %q", a.ID)
		}
		lib.archetypes[a.ID] = a
	}
	return lib, nil
}

// Counts returns the number of loaded items per kind.
func (l *Library) Counts() Counts {
	return Counts{
		Races:         len(l.races),
		DefaultTraits: len(l.defaultTraits),
		AltTraits:     len(l.altTraits),
		Classes:       len(l.classes),
		Archetypes:    len(l.archetypes),
		FavoredClass:  len(l.favored),
	}
}

// Race returns the race with id.
//
// Postcondition: Returns the Race or an error wrapping ErrNotFound.
func (l *Library) Race(id string) (*Race, error) {
	r, ok := l.races[id]
	if !ok {
		return nil, fmt.Errorf("race %q: %w", id, ErrNotFound)
	}
	return r, nil
}

// Races returns every race sorted by display name.
func (l *Library) Races() []*Race {
	out := make([]*Race, 0, len(l.races))
	for _, r := range l.races {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DefaultTraitsFor returns the default trait list of race.
//
// Postcondition: Returns the list or an error wrapping ErrNotFound.
func (l *Library) DefaultTraitsFor(race string) (*DefaultTraits, error) {
	d, ok := l.defaultTraits[race]
	if !ok {
		return nil, fmt.Errorf("default traits for race %q: %w", race, ErrNotFound)
	}
	return d, nil
}

// AltTraitsFor returns the alternate traits of race sorted by name.
func (l *Library) AltTraitsFor(race string) []*AltTrait {
	var out []*AltTrait
	for _, a := range l.altTraits {
		if a.Race == race {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AltTrait returns the alternate trait with id.
//
// Postcondition: Returns the trait or an error wrapping ErrNotFound.
func (l *Library) AltTrait(id string) (*AltTrait, error) {
	a, ok := l.altTraits[id]
	if !ok {
		return nil, fmt.Errorf("alt trait %q: %w", id, ErrNotFound)
	}
	return a, nil
}

// TraitDescription finds the display text for a default or alternate trait id
// of race.
//
// Postcondition: Returns the description or an error wrapping ErrNotFound.
func (l *Library) TraitDescription(race, id string) (TraitDescription, error) {
	if d, ok := l.defaultTraits[race]; ok {
		for _, t := range d.Traits {
			if t.ID == id {
				return t, nil
			}
		}
	}
	if a, ok := l.altTraits[id]; ok && a.Race == race {
		return TraitDescription{ID: a.ID, Name: a.Name, Category: a.Category, Description: a.Description}, nil
	}
	return TraitDescription{}, fmt.Errorf("trait %q of race %q: %w", id, race, ErrNotFound)
}

// Class returns the class with id.
//
// Postcondition: Returns the Class or an error wrapping ErrNotFound.
func (l *Library) Class(id string) (*Class, error) {
	c, ok := l.classes[id]
	if !ok {
		return nil, fmt.Errorf("class %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// Classes returns every class sorted by display name.
func (l *Library) Classes() []*Class {
	out := make([]*Class, 0, len(l.classes))
	for _, c := range l.classes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Archetype returns the archetype with id.
//
// Postcondition: Returns the Archetype or an error wrapping ErrNotFound.
func (l *Library) Archetype(id string) (*Archetype, error) {
	a, ok := l.archetypes[id]
	if !ok {
		return nil, fmt.Errorf("archetype %q: %w", id, ErrNotFound)
	}
	return a, nil
}

// ArchetypesFor returns the archetypes of class sorted by name.
func (l *Library) ArchetypesFor(class string) []*Archetype {
	var out []*Archetype
	for _, a := range l.archetypes {
		if a.Class == class {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// FavoredClassOptions returns the standard options followed by any racial
// alternatives for the race/class pairing.
//
// Postcondition: Returns at least the two standard options.
func (l *Library) FavoredClassOptions(race, class string) []*FavoredClassOption {
	out := StandardFavoredClassOptions(race, class)
	for _, f := range l.favored {
		if f.Race == race && f.Class == class {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks cross references between content kinds.
//
// Postcondition: Returns nil when consistent, or an error joining every violation.
func (l *Library) Validate() error {
	var errs []error
	for race := range l.defaultTraits {
		if _, ok := l.races[race]; !ok {
			errs = append(errs, fmt.Errorf("default traits reference unknown race %q", race))
		}
	}
	for id := range l.races {
		if _, ok := l.defaultTraits[id]; !ok {
			errs = append(errs, fmt.Errorf("race %q has no default traits", id))
		}
	}
	for _, a := range l.altTraits {
		d, ok := l.defaultTraits[a.Race]
		if !ok {
			errs = append(errs, fmt.Errorf("alt trait %q references unknown race %q", a.ID, a.Race))
			continue
		}
		ids := make(map[string]bool, len(d.Traits))
		for _, t := range d.Traits {
			ids[t.ID] = true
		}
		for _, r := range a.Replaces {
			if !ids[r] {
				errs = append(errs, fmt.Errorf("alt trait %q replaces %q which is not a default trait of %q", a.ID, r, a.Race))
			}
		}
	}
	for _, a := range l.archetypes {
		c, ok := l.classes[a.Class]
		if !ok {
			errs = append(errs, fmt.Errorf("archetype %q references unknown class %q", a.ID, a.Class))
			continue
		}
		for _, r := range a.Replaces {
			found := false
			for _, f := range c.Features {
				if f.Name == r {
					found = true
					break
				}
			}
			if !found {
				errs = append(errs, fmt.Errorf("archetype %q replaces %q which is not a feature of %q", a.ID, r, a.Class))
			}
		}
	}
	for _, f := range l.favored {
		if _, ok := l.races[f.Race]; !ok {
			errs = append(errs, fmt.Errorf("favored class option %q references unknown race %q", f.ID, f.Race))
		}
		if _, ok := l.classes[f.Class]; !ok {
			errs = append(errs, fmt.Errorf("favored class option %q references unknown class %q", f.ID, f.Class))
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}
