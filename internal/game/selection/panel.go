package selection

import "github.com/cory-johannsen/charforge/internal/game/ruleset"

// PanelKind tells a renderer what a panel shows.
type PanelKind string

// Panel kinds.
const (
	KindTabBar        PanelKind = "tab_bar"
	KindRaceList      PanelKind = "race_list"
	KindRaceTabBar    PanelKind = "race_tab_bar"
	KindRaceDetail    PanelKind = "race_description"
	KindRaceTraits    PanelKind = "race_traits"
	KindRaceAltTraits PanelKind = "race_alt_traits"
	KindRaceFavored   PanelKind = "race_favored_class"
	KindClassList     PanelKind = "class_list"
	KindClassTabBar   PanelKind = "class_tab_bar"
	KindClassDetail   PanelKind = "class_description"
	KindClassFeatures PanelKind = "class_features"
	KindArchetypeList PanelKind = "class_archetypes"
	KindArchetype     PanelKind = "archetype_description"
	KindAbilities     PanelKind = "abilities"
	KindReview        PanelKind = "review"
)

// Panel is one block of the creation screen. Every non-zero field must match
// the navigation state for the panel to be shown; zero fields match anything.
type Panel struct {
	Kind      PanelKind
	Tab       Tab
	RaceTab   RaceTab
	ClassTab  ClassTab
	Race      string
	Class     string
	Archetype string
}

// Matches reports whether p is shown for v.
func (p Panel) Matches(v View) bool {
	switch {
	case p.Tab != "" && p.Tab != v.Tab:
		return false
	case p.RaceTab != "" && p.RaceTab != v.RaceTab:
		return false
	case p.ClassTab != "" && p.ClassTab != v.ClassTab:
		return false
	case p.Race != "" && p.Race != v.Race:
		return false
	case p.Class != "" && p.Class != v.Class:
		return false
	case p.Archetype != "" && p.Archetype != v.Archetype:
		return false
	}
	return true
}

// Visible reports whether p is shown for the current state of s.
func Visible(p Panel, s *State) bool {
	return p.Matches(s.View())
}

// Screen is the fixed set of panels of a creation screen. Panels are built
// once and only shown or hidden afterwards.
type Screen struct {
	panels []Panel
}

// NewScreen returns a screen holding panels in build order.
func NewScreen(panels ...Panel) *Screen {
	return &Screen{panels: append([]Panel(nil), panels...)}
}

// Panels returns every panel in build order.
func (sc *Screen) Panels() []Panel {
	return append([]Panel(nil), sc.panels...)
}

// VisiblePanels returns the panels shown for v, in build order.
func (sc *Screen) VisiblePanels(v View) []Panel {
	var out []Panel
	for _, p := range sc.panels {
		if p.Matches(v) {
			out = append(out, p)
		}
	}
	return out
}

// BuildScreen lays out the creation screen for every race, class and
// archetype in lib.
//
// Precondition: lib must be non-nil.
// Postcondition: Returns a Screen where, for any state, at most one detail
// panel per sub-tab is visible.
func BuildScreen(lib *ruleset.Library) *Screen {
	panels := []Panel{{Kind: KindTabBar}}

	panels = append(panels,
		Panel{Kind: KindRaceList, Tab: TabRace},
		Panel{Kind: KindRaceTabBar, Tab: TabRace},
	)
	for _, r := range lib.Races() {
		panels = append(panels,
			Panel{Kind: KindRaceDetail, Tab: TabRace, RaceTab: RaceDescription, Race: r.ID},
			Panel{Kind: KindRaceTraits, Tab: TabRace, RaceTab: RaceTraits, Race: r.ID},
			Panel{Kind: KindRaceAltTraits, Tab: TabRace, RaceTab: RaceAltTraits, Race: r.ID},
			Panel{Kind: KindRaceFavored, Tab: TabRace, RaceTab: RaceFavoredClass, Race: r.ID},
		)
	}

	panels = append(panels,
		Panel{Kind: KindClassList, Tab: TabClass},
		Panel{Kind: KindClassTabBar, Tab: TabClass},
	)
	for _, c := range lib.Classes() {
		panels = append(panels,
			Panel{Kind: KindClassDetail, Tab: TabClass, ClassTab: ClassDescription, Class: c.ID},
			Panel{Kind: KindClassFeatures, Tab: TabClass, ClassTab: ClassFeatures, Class: c.ID},
			Panel{Kind: KindArchetypeList, Tab: TabClass, ClassTab: ClassArchetypes, Class: c.ID},
		)
		for _, a := range lib.ArchetypesFor(c.ID) {
			panels = append(panels, Panel{
				Kind: KindArchetype, Tab: TabClass, ClassTab: ClassArchetypes, Class: c.ID, Archetype: a.ID,
			})
		}
	}

	panels = append(panels,
		Panel{Kind: KindAbilities, Tab: TabAbilities},
		Panel{Kind: KindReview, Tab: TabReview},
	)
	return NewScreen(panels...)
}
