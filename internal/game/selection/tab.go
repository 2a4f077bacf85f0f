// Package selection holds the navigation state of the character creation
// screen and decides which panels of a screen are shown for that state.
package selection

import (
	"fmt"
	"strings"
)

// Tab is a top-level tab of the creation screen.
type Tab string

// Top-level tabs.
const (
	TabRace      Tab = "race"
	TabClass     Tab = "class"
	TabAbilities Tab = "abilities"
	TabReview    Tab = "review"
)

// Tabs returns the top-level tabs in display order.
func Tabs() []Tab {
	return []Tab{TabRace, TabClass, TabAbilities, TabReview}
}

// RaceTab is a sub-tab of the race tab.
type RaceTab string

// Race sub-tabs.
const (
	RaceDescription  RaceTab = "description"
	RaceTraits       RaceTab = "traits"
	RaceAltTraits    RaceTab = "alt_traits"
	RaceFavoredClass RaceTab = "favored_class"
)

// RaceTabs returns the race sub-tabs in display order.
func RaceTabs() []RaceTab {
	return []RaceTab{RaceDescription, RaceTraits, RaceAltTraits, RaceFavoredClass}
}

// ClassTab is a sub-tab of the class tab.
type ClassTab string

// Class sub-tabs.
const (
	ClassDescription ClassTab = "description"
	ClassFeatures    ClassTab = "features"
	ClassArchetypes  ClassTab = "archetypes"
)

// ClassTabs returns the class sub-tabs in display order.
func ClassTabs() []ClassTab {
	return []ClassTab{ClassDescription, ClassFeatures, ClassArchetypes}
}

func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// ParseTab resolves a tab name.
//
// Postcondition: Returns the Tab or a non-nil error.
func ParseTab(s string) (Tab, error) {
	for _, t := range Tabs() {
		if fold(s) == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// ParseRaceTab resolves a race sub-tab name. "alt" and "favored" are accepted
// as short forms.
//
// Postcondition: Returns the RaceTab or a non-nil error.
func ParseRaceTab(s string) (RaceTab, error) {
	switch f := fold(s); f {
	case "alt":
		return RaceAltTraits, nil
	case "favored":
		return RaceFavoredClass, nil
	default:
		for _, t := range RaceTabs() {
			if f == string(t) {
				return t, nil
			}
		}
	}
	return "", fmt.Errorf("unknown race sub-tab %q", s)
}

// ParseClassTab resolves a class sub-tab name.
//
// Postcondition: Returns the ClassTab or a non-nil error.
func ParseClassTab(s string) (ClassTab, error) {
	for _, t := range ClassTabs() {
		if fold(s) == string(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown class sub-tab %q", s)
}

// Label returns the display label of a tab id: "alt_traits" becomes "Alt Traits".
func Label(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
