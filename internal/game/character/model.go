// Package character defines the character under construction, the finished
// character record and the pure derivation of a level-1 sheet.
package character

import (
	"errors"
	"fmt"
	"time"
)

// Character is a finished, persisted character.
//
// AccountID and ID are set by the persistence layer; zero values indicate an unsaved character.
type Character struct {
	ID        int64
	AccountID int64

	Name       string
	Race       string // race ID
	Class      string // class ID
	Archetypes []string
	AltTraits  []string
	Level      int

	Abilities AbilityScores
	MaxHP     int
	Sheet     *Sheet

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FromSheet builds an unsaved Character from a derived sheet.
//
// Precondition: sheet must be non-nil.
// Postcondition: Returns the Character, or an error if the name is empty or
// the sheet still has pending choices.
func FromSheet(accountID int64, sheet *Sheet) (*Character, error) {
	if sheet.Name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if !sheet.Complete() {
		return nil, fmt.Errorf("character has %d pending choices, first: %s", len(sheet.Pending), sheet.Pending[0])
	}
	return &Character{
		AccountID:  accountID,
		Name:       sheet.Name,
		Race:       sheet.Race,
		Class:      sheet.Class,
		Archetypes: append([]string(nil), sheet.Archetypes...),
		AltTraits:  append([]string(nil), sheet.AltTraits...),
		Level:      sheet.Level,
		Abilities:  sheet.Abilities,
		MaxHP:      sheet.HitPoints,
		Sheet:      sheet,
	}, nil
}
