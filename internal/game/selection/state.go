package selection

import (
	"sort"
	"sync"
)

// Field names a piece of navigation state.
type Field string

// State fields.
const (
	FieldTab       Field = "tab"
	FieldRace      Field = "race"
	FieldRaceTab   Field = "race_tab"
	FieldClass     Field = "class"
	FieldClassTab  Field = "class_tab"
	FieldArchetype Field = "archetype"
	FieldTrait     Field = "trait"
)

// Change describes one field changing value.
type Change struct {
	Field Field
	Old   string
	New   string
}

// View is a snapshot of the navigation state. The zero View is the state of
// a fresh screen before defaults are applied.
type View struct {
	Tab       Tab
	Race      string
	RaceTab   RaceTab
	Class     string
	ClassTab  ClassTab
	Archetype string
	Trait     string
}

// State is the current navigation of one creation screen. Setters record a
// change only when the value actually changes and then notify subscribers.
//
// State is safe for concurrent use. Subscribers are called synchronously,
// outside the lock, in subscription order.
type State struct {
	mu     sync.Mutex
	view   View
	subs   map[int]func(Change)
	nextID int
}

// NewState returns a State on the race tab with the description sub-tabs selected.
func NewState() *State {
	return &State{
		view: View{
			Tab:      TabRace,
			RaceTab:  RaceDescription,
			ClassTab: ClassDescription,
		},
		subs: make(map[int]func(Change)),
	}
}

// View returns a snapshot of the state.
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Subscribe registers fn for every future change.
//
// Postcondition: Returns a function that removes the subscription.
func (s *State) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// SetTab selects a top-level tab.
func (s *State) SetTab(t Tab) bool {
	return s.update(func(v *View) []Change {
		return set(&v.Tab, t, FieldTab)
	})
}

// SetRace selects a race. A different race clears the selected trait.
func (s *State) SetRace(race string) bool {
	return s.update(func(v *View) []Change {
		changes := set(&v.Race, race, FieldRace)
		if len(changes) > 0 {
			changes = append(changes, set(&v.Trait, "", FieldTrait)...)
		}
		return changes
	})
}

// SetRaceTab selects a race sub-tab.
func (s *State) SetRaceTab(t RaceTab) bool {
	return s.update(func(v *View) []Change {
		return set(&v.RaceTab, t, FieldRaceTab)
	})
}

// SetClass selects a class. A different class clears the selected archetype.
func (s *State) SetClass(class string) bool {
	return s.update(func(v *View) []Change {
		changes := set(&v.Class, class, FieldClass)
		if len(changes) > 0 {
			changes = append(changes, set(&v.Archetype, "", FieldArchetype)...)
		}
		return changes
	})
}

// SetClassTab selects a class sub-tab.
func (s *State) SetClassTab(t ClassTab) bool {
	return s.update(func(v *View) []Change {
		return set(&v.ClassTab, t, FieldClassTab)
	})
}

// SetArchetype highlights an archetype of the selected class.
func (s *State) SetArchetype(id string) bool {
	return s.update(func(v *View) []Change {
		return set(&v.Archetype, id, FieldArchetype)
	})
}

// SetTrait highlights a trait of the selected race.
func (s *State) SetTrait(id string) bool {
	return s.update(func(v *View) []Change {
		return set(&v.Trait, id, FieldTrait)
	})
}

// Restore replaces the whole view, notifying one change per differing field.
func (s *State) Restore(next View) bool {
	return s.update(func(v *View) []Change {
		var changes []Change
		changes = append(changes, set(&v.Tab, next.Tab, FieldTab)...)
		changes = append(changes, set(&v.Race, next.Race, FieldRace)...)
		changes = append(changes, set(&v.RaceTab, next.RaceTab, FieldRaceTab)...)
		changes = append(changes, set(&v.Class, next.Class, FieldClass)...)
		changes = append(changes, set(&v.ClassTab, next.ClassTab, FieldClassTab)...)
		changes = append(changes, set(&v.Archetype, next.Archetype, FieldArchetype)...)
		changes = append(changes, set(&v.Trait, next.Trait, FieldTrait)...)
		return changes
	})
}

func (s *State) update(fn func(*View) []Change) bool {
	s.mu.Lock()
	changes := fn(&s.view)
	var subs []func(Change)
	if len(changes) > 0 {
		ids := make([]int, 0, len(s.subs))
		for id := range s.subs {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			subs = append(subs, s.subs[id])
		}
	}
	s.mu.Unlock()

	for _, c := range changes {
		for _, fn := range subs {
			fn(c)
		}
	}
	return len(changes) > 0
}

func set[T ~string](dst *T, v T, f Field) []Change {
	if *dst == v {
		return nil
	}
	c := Change{Field: f, Old: string(*dst), New: string(v)}
	*dst = v
	return []Change{c}
}
