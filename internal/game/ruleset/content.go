// Package ruleset loads the descriptive game content (races, racial traits,
// classes, archetypes and favored class options) from a tree of YAML files.
//
// Each content kind is identified by a compound file extension, so a single
// directory may hold several kinds side by side:
//
//	elf.race.yaml            Race
//	elf.default_traits.yaml  DefaultTraits
//	arcane_focus.alt_trait.yaml AltTrait
//	wizard.class.yaml        Class
//	archer.archetype.yaml    Archetype
//	elf_wizard.favored_class.yaml FavoredClassOption
package ruleset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Library lookups for unknown ids.
var ErrNotFound = errors.New("content not found")

// Kind names a content file kind by its compound extension stem.
type Kind string

// Content kinds.
const (
	KindRace          Kind = "race"
	KindDefaultTraits Kind = "default_traits"
	KindAltTrait      Kind = "alt_trait"
	KindClass         Kind = "class"
	KindArchetype     Kind = "archetype"
	KindFavoredClass  Kind = "favored_class"
)

// DescriptionsDir is the content subtree holding all descriptive files.
const DescriptionsDir = "text/descriptions"

// AllKinds returns every content kind in load order.
func AllKinds() []Kind {
	return []Kind{KindRace, KindDefaultTraits, KindAltTrait, KindClass, KindArchetype, KindFavoredClass}
}

// Matches reports whether name carries this kind's compound extension.
func (k Kind) Matches(name string) bool {
	stem := "." + string(k)
	return strings.HasSuffix(name, stem+".yaml") || strings.HasSuffix(name, stem+".yml")
}

// kindFiles walks dir recursively and returns every file of kind k, sorted.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns the matching paths (may be empty) or a non-nil error.
func kindFiles(dir string, k Kind) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !k.Matches(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s for %s files: %w", dir, k, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// decodeFile strictly decodes a single YAML document at path into out.
// Unknown fields are rejected so that typos in content surface at load time.
func decodeFile(path string, k Kind, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parsing %s file %s: %w", k, path, err)
	}
	return nil
}

// loadKind decodes every file of kind k under dir into a freshly allocated T.
func loadKind[T any](dir string, k Kind) ([]*T, error) {
	files, err := kindFiles(dir, k)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(files))
	for _, path := range files {
		v := new(T)
		if err := decodeFile(path, k, v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
