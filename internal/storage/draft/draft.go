// Package draft keeps characters that are still being created in Redis so a
// player can disconnect and resume later.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/selection"
)

const (
	draftKeyPrefix   = "charforge:draft:"
	accountKeyPrefix = "charforge:draft:account:"

	// DefaultTTL applies when a Repository is created with a non-positive TTL.
	DefaultTTL = 72 * time.Hour
)

// ErrNotFound is returned when a draft does not exist or has expired.
var ErrNotFound = errors.New("draft not found")

// Draft is one in-progress character. Choices is the only rules state kept;
// the builder is rebuilt from it on resume.
type Draft struct {
	ID        string         `json:"id"`
	AccountID int64          `json:"account_id"`
	Choices   rules.Choices  `json:"choices"`
	View      selection.View `json:"view"`
	Rolled    []int          `json:"rolled,omitempty"`
	Budget    int            `json:"budget,omitempty"`

	// Assigned records the scores placed so far under the current method.
	Assigned map[character.Ability]int `json:"assigned,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns an unsaved draft for accountID.
func New(accountID int64) *Draft {
	return &Draft{AccountID: accountID}
}

// Repository stores drafts as JSON documents with a sliding TTL. Each account
// has at most one draft; saving a new one replaces the old.
type Repository struct {
	client redis.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

// NewRepository creates a Repository.
//
// Precondition: client must be non-nil.
// Postcondition: Returns a Repository whose drafts expire ttl after their last save.
func NewRepository(client redis.Cmdable, ttl time.Duration) *Repository {
	if client == nil {
		panic("draft.NewRepository: client must not be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repository{client: client, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of a saved draft.
func (r *Repository) TTL() time.Duration {
	return r.ttl
}

func draftKey(id string) string {
	return draftKeyPrefix + id
}

func accountKey(accountID int64) string {
	return accountKeyPrefix + strconv.FormatInt(accountID, 10)
}

// Save writes d and refreshes its TTL. A draft without an ID is assigned one.
//
// Precondition: d must be non-nil with a positive AccountID.
// Postcondition: d.ID and d.UpdatedAt are set; any other draft of the account is removed.
func (r *Repository) Save(ctx context.Context, d *Draft) error {
	if d == nil {
		return errors.New("saving draft: draft must not be nil")
	}
	if d.AccountID <= 0 {
		return fmt.Errorf("saving draft: invalid account id %d", d.AccountID)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	now := r.now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling draft %s: %w", d.ID, err)
	}

	aKey := accountKey(d.AccountID)
	previous, err := r.client.Get(ctx, aKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reading draft of account %d: %w", d.AccountID, err)
	}

	pipe := r.client.TxPipeline()
	if previous != "" && previous != d.ID {
		pipe.Del(ctx, draftKey(previous))
	}
	pipe.Set(ctx, draftKey(d.ID), data, r.ttl)
	pipe.Set(ctx, aKey, d.ID, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving draft %s: %w", d.ID, err)
	}
	return nil
}

// Get returns the draft with id.
//
// Postcondition: Returns the draft, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (*Draft, error) {
	if id == "" {
		return nil, fmt.Errorf("getting draft: %w", ErrNotFound)
	}
	raw, err := r.client.Get(ctx, draftKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("draft %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting draft %s: %w", id, err)
	}
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding draft %s: %w", id, err)
	}
	return &d, nil
}

// GetByAccount returns the draft of accountID. A mapping left behind by an
// expired draft is removed.
//
// Postcondition: Returns the draft, or ErrNotFound.
func (r *Repository) GetByAccount(ctx context.Context, accountID int64) (*Draft, error) {
	aKey := accountKey(accountID)
	id, err := r.client.Get(ctx, aKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("draft of account %d: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft of account %d: %w", accountID, err)
	}
	d, err := r.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		r.client.Del(ctx, aKey)
	}
	return d, err
}

// Delete removes the draft with id and its account mapping.
//
// Postcondition: Returns ErrNotFound if no such draft exists.
func (r *Repository) Delete(ctx context.Context, id string) error {
	d, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	aKey := accountKey(d.AccountID)
	owner, err := r.client.Get(ctx, aKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reading draft of account %d: %w", d.AccountID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, draftKey(id))
	if owner == id {
		pipe.Del(ctx, aKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	return nil
}
