package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/charforge/internal/game/character"
)

var (
	// ErrCharacterNotFound is returned when a character lookup yields no results.
	ErrCharacterNotFound = errors.New("character not found")
	// ErrCharacterNameTaken is returned when an account already has a character with the name.
	ErrCharacterNameTaken = errors.New("character name already taken")
)

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

const characterColumns = `id, account_id, name, race, class, archetypes, alt_traits, level,
	strength, dexterity, constitution, intelligence, wisdom, charisma,
	max_hp, sheet, created_at, updated_at`

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var (
		c     character.Character
		sheet []byte
	)
	err := row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Race, &c.Class, &c.Archetypes, &c.AltTraits, &c.Level,
		&c.Abilities.Strength, &c.Abilities.Dexterity, &c.Abilities.Constitution,
		&c.Abilities.Intelligence, &c.Abilities.Wisdom, &c.Abilities.Charisma,
		&c.MaxHP, &sheet, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	c.Sheet = new(character.Sheet)
	if err := json.Unmarshal(sheet, c.Sheet); err != nil {
		return nil, fmt.Errorf("decoding sheet of character %d: %w", c.ID, err)
	}
	return &c, nil
}

// Create inserts a finished character with its sheet stored as JSONB.
//
// Precondition: c.AccountID must reference an existing account; c.Sheet must be non-nil.
// Postcondition: Returns the stored character with ID and timestamps set,
// or ErrCharacterNameTaken when the account already uses the name.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	sheet, err := json.Marshal(c.Sheet)
	if err != nil {
		return nil, fmt.Errorf("encoding sheet: %w", err)
	}
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		INSERT INTO characters
			(account_id, name, race, class, archetypes, alt_traits, level,
			 strength, dexterity, constitution, intelligence, wisdom, charisma,
			 max_hp, sheet)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING `+characterColumns,
		c.AccountID, c.Name, c.Race, c.Class, nonNil(c.Archetypes), nonNil(c.AltTraits), c.Level,
		c.Abilities.Strength, c.Abilities.Dexterity, c.Abilities.Constitution,
		c.Abilities.Intelligence, c.Abilities.Wisdom, c.Abilities.Charisma,
		c.MaxHP, sheet,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// ListByAccount returns the account's characters, oldest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) ListByAccount(ctx context.Context, accountID int64) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE account_id = $1 ORDER BY created_at, id`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// GetByID retrieves a character by its primary key.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil && !errors.Is(err, ErrCharacterNotFound) {
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, err
}

// Delete removes a character owned by accountID.
//
// Postcondition: Returns ErrCharacterNotFound when no such character belongs to the account.
func (r *CharacterRepository) Delete(ctx context.Context, accountID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1 AND account_id = $2`, id, accountID)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
