package bonus

import (
	"fmt"
	"sort"
)

// Map groups bonuses by the statistic they modify (a skill, an ability, a
// saving throw, ...). The zero value is not usable; construct with NewMap.
type Map[K comparable] struct {
	entries map[K][]Bonus
}

// NewMap returns an empty Map.
func NewMap[K comparable]() *Map[K] {
	return &Map[K]{entries: make(map[K][]Bonus)}
}

// Add records b against category k. A bonus with the same type, source and
// condition already present for k is replaced rather than duplicated.
//
// Postcondition: Get(k) contains exactly one record for b's slot.
func (m *Map[K]) Add(k K, b Bonus) {
	list := m.entries[k]
	for i := range list {
		if sameSlot(list[i], b) {
			list[i] = b
			return
		}
	}
	m.entries[k] = append(list, b)
}

// Get returns a copy of the records held for k.
func (m *Map[K]) Get(k K) []Bonus {
	list := m.entries[k]
	if len(list) == 0 {
		return nil
	}
	out := make([]Bonus, len(list))
	copy(out, list)
	return out
}

// Has reports whether any record is held for k.
func (m *Map[K]) Has(k K) bool {
	return len(m.entries[k]) > 0
}

// Len returns the number of categories with at least one record.
func (m *Map[K]) Len() int {
	return len(m.entries)
}

// Keys returns the categories sorted by their printed form.
func (m *Map[K]) Keys() []K {
	keys := make([]K, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}

// Clone returns a deep copy of m.
func (m *Map[K]) Clone() *Map[K] {
	out := NewMap[K]()
	for k, list := range m.entries {
		cp := make([]Bonus, len(list))
		copy(cp, list)
		out.entries[k] = cp
	}
	return out
}

// Total returns the net modifier for k counting only unconditional bonuses.
func (m *Map[K]) Total(k K) int {
	return Sum(m.entries[k], func(b Bonus) bool { return !b.Conditional() })
}

// TotalFor returns the net modifier for k in the situation named by condition:
// unconditional bonuses plus those whose Condition equals condition.
func (m *Map[K]) TotalFor(k K, condition string) int {
	return Sum(m.entries[k], func(b Bonus) bool {
		return !b.Conditional() || b.Condition == condition
	})
}

// Conditions returns the distinct conditions recorded for k, sorted.
func (m *Map[K]) Conditions(k K) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range m.entries[k] {
		if b.Conditional() && !seen[b.Condition] {
			seen[b.Condition] = true
			out = append(out, b.Condition)
		}
	}
	sort.Strings(out)
	return out
}

// Snapshot returns a plain map copy suitable for serialization.
func (m *Map[K]) Snapshot() map[K][]Bonus {
	out := make(map[K][]Bonus, len(m.entries))
	for k, list := range m.entries {
		cp := make([]Bonus, len(list))
		copy(cp, list)
		out[k] = cp
	}
	return out
}

// Sum applies the stacking rules to the bonuses accepted by include.
//
// Penalties always stack. Positive bonuses of a stacking type add together;
// for every other type only the highest positive value counts.
func Sum(list []Bonus, include func(Bonus) bool) int {
	total := 0
	best := make(map[Type]int)
	for _, b := range list {
		if include != nil && !include(b) {
			continue
		}
		switch {
		case b.Value < 0, b.Type.Stacks():
			total += b.Value
		case b.Value > best[b.Type]:
			best[b.Type] = b.Value
		}
	}
	for _, v := range best {
		total += v
	}
	return total
}
