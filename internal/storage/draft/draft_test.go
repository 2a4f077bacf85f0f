package draft_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/selection"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
	"github.com/cory-johannsen/charforge/internal/testutil"
)

func TestRepository_SaveAndGet(t *testing.T) {
	_, client := testutil.NewRedis(t)
	repo := draft.NewRepository(client, time.Hour)
	ctx := context.Background()

	d := draft.New(7)
	d.Choices = rules.Choices{
		Name:            "Kyra",
		Race:            "human",
		Class:           "cleric",
		FloatingAbility: map[string]character.Ability{"HumanAbilityModifiers": character.Wisdom},
	}
	d.View = selection.View{Tab: selection.TabClass, Class: "cleric", ClassTab: selection.ClassFeatures}
	d.Rolled = []int{15, 14, 13, 12, 10, 8}
	require.NoError(t, repo.Save(ctx, d))
	require.NotEmpty(t, d.ID)
	assert.False(t, d.UpdatedAt.IsZero())

	got, err := repo.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Choices, got.Choices)
	assert.Equal(t, d.View, got.View)
	assert.Equal(t, d.Rolled, got.Rolled)

	byAcct, err := repo.GetByAccount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, d.ID, byAcct.ID)
}

func TestRepository_SaveKeepsID(t *testing.T) {
	_, client := testutil.NewRedis(t)
	repo := draft.NewRepository(client, time.Hour)
	ctx := context.Background()

	d := draft.New(1)
	require.NoError(t, repo.Save(ctx, d))
	id, created := d.ID, d.CreatedAt
	d.Choices.Race = "gnome"
	require.NoError(t, repo.Save(ctx, d))
	assert.Equal(t, id, d.ID)
	assert.Equal(t, created, d.CreatedAt)
}

func TestRepository_NewDraftReplacesOld(t *testing.T) {
	_, client := testutil.NewRedis(t)
	repo := draft.NewRepository(client, time.Hour)
	ctx := context.Background()

	first := draft.New(3)
	require.NoError(t, repo.Save(ctx, first))
	second := draft.New(3)
	require.NoError(t, repo.Save(ctx, second))

	_, err := repo.Get(ctx, first.ID)
	assert.ErrorIs(t, err, draft.ErrNotFound)
	got, err := repo.GetByAccount(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestRepository_Expiry(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	repo := draft.NewRepository(client, time.Hour)
	ctx := context.Background()

	d := draft.New(9)
	require.NoError(t, repo.Save(ctx, d))
	mr.FastForward(30 * time.Minute)
	require.NoError(t, repo.Save(ctx, d))
	mr.FastForward(45 * time.Minute)
	_, err := repo.Get(ctx, d.ID)
	require.NoError(t, err, "save refreshes the ttl")

	mr.FastForward(time.Hour)
	_, err = repo.GetByAccount(ctx, 9)
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestRepository_StaleAccountMappingIsRemoved(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	repo := draft.NewRepository(client, time.Hour)
	ctx := context.Background()

	d := draft.New(4)
	require.NoError(t, repo.Save(ctx, d))
	mr.Del("charforge:draft:" + d.ID)

	_, err := repo.GetByAccount(ctx, 4)
	assert.ErrorIs(t, err, draft.ErrNotFound)
	assert.False(t, mr.Exists("charforge:draft:account:4"))
}

func TestRepository_Delete(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	repo := draft.NewRepository(client, 0)
	assert.Equal(t, draft.DefaultTTL, repo.TTL())
	ctx := context.Background()

	d := draft.New(5)
	require.NoError(t, repo.Save(ctx, d))
	require.NoError(t, repo.Delete(ctx, d.ID))
	assert.False(t, mr.Exists("charforge:draft:account:5"))

	err := repo.Delete(ctx, d.ID)
	assert.True(t, errors.Is(err, draft.ErrNotFound))
}

func TestRepository_SaveRejectsInvalid(t *testing.T) {
	_, client := testutil.NewRedis(t)
	repo := draft.NewRepository(client, time.Hour)
	assert.Error(t, repo.Save(context.Background(), nil))
	assert.Error(t, repo.Save(context.Background(), draft.New(0)))
	_, err := repo.Get(context.Background(), "")
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestNewRepository_NilClientPanics(t *testing.T) {
	assert.Panics(t, func() { draft.NewRepository(nil, time.Hour) })
}

// Property: whatever the account saves last is what GetByAccount returns.
func TestPropertyLastSaveWins(t *testing.T) {
	_, client := testutil.NewRedis(t)
	repo := draft.NewRepository(client, time.Hour)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		acct := rapid.Int64Range(1, 5).Draw(rt, "account")
		n := rapid.IntRange(1, 4).Draw(rt, "saves")
		var last *draft.Draft
		for i := 0; i < n; i++ {
			d := draft.New(acct)
			d.Choices.Name = rapid.StringMatching(`[A-Z][a-z]{2,8}`).Draw(rt, "name")
			if err := repo.Save(ctx, d); err != nil {
				rt.Fatalf("save: %v", err)
			}
			last = d
		}
		got, err := repo.GetByAccount(ctx, acct)
		if err != nil {
			rt.Fatalf("get: %v", err)
		}
		if got.ID != last.ID || got.Choices.Name != last.Choices.Name {
			rt.Fatalf("got %s/%s, want %s/%s", got.ID, got.Choices.Name, last.ID, last.Choices.Name)
		}
	})
}
