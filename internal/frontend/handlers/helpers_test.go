package handlers

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/charforge/internal/frontend/telnet"
	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/command"
	"github.com/cory-johannsen/charforge/internal/game/dice"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
	"github.com/cory-johannsen/charforge/internal/game/selection"
	"github.com/cory-johannsen/charforge/internal/game/session"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
	"github.com/cory-johannsen/charforge/internal/storage/postgres"
	"github.com/cory-johannsen/charforge/internal/testutil"
)

const contentRoot = "../../../content"

// mockAccountStore implements AccountStore for testing.
type mockAccountStore struct {
	mu        sync.Mutex
	accounts  map[string]postgres.Account
	passwords map[string]string
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{
		accounts:  make(map[string]postgres.Account),
		passwords: make(map[string]string),
	}
}

func (m *mockAccountStore) Create(_ context.Context, username, password string) (postgres.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.accounts[username]; exists {
		return postgres.Account{}, postgres.ErrAccountExists
	}
	acct := postgres.Account{
		ID:        int64(len(m.accounts) + 1),
		Username:  username,
		Role:      postgres.RolePlayer,
		CreatedAt: time.Now(),
	}
	m.accounts[username] = acct
	m.passwords[username] = password
	return acct, nil
}

func (m *mockAccountStore) Authenticate(_ context.Context, username, password string) (postgres.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, exists := m.accounts[username]
	if !exists {
		return postgres.Account{}, postgres.ErrAccountNotFound
	}
	if m.passwords[username] != password {
		return postgres.Account{}, postgres.ErrInvalidCredentials
	}
	return acct, nil
}

// setRole changes the role of an existing account.
func (m *mockAccountStore) setRole(username, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct := m.accounts[username]
	acct.Role = role
	m.accounts[username] = acct
}

// mockCharacterStore implements CharacterStore in memory.
type mockCharacterStore struct {
	mu     sync.Mutex
	chars  []*character.Character
	nextID int64
}

func (m *mockCharacterStore) ListByAccount(_ context.Context, accountID int64) ([]*character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*character.Character
	for _, c := range m.chars {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCharacterStore) Create(_ context.Context, c *character.Character) (*character.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.chars {
		if existing.AccountID == c.AccountID && strings.EqualFold(existing.Name, c.Name) {
			return nil, postgres.ErrCharacterNameTaken
		}
	}
	m.nextID++
	saved := *c
	saved.ID = m.nextID
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	m.chars = append(m.chars, &saved)
	return &saved, nil
}

func (m *mockCharacterStore) Delete(_ context.Context, accountID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.chars {
		if c.ID == id && c.AccountID == accountID {
			m.chars = append(m.chars[:i], m.chars[i+1:]...)
			return nil
		}
	}
	return postgres.ErrCharacterNotFound
}

func (m *mockCharacterStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chars)
}

// fixture holds an AuthHandler wired to in-memory stores.
type fixture struct {
	handler    *AuthHandler
	accounts   *mockAccountStore
	characters *mockCharacterStore
	drafts     *draft.Repository
	redis      *miniredis.Miniredis
	lib        *ruleset.Library
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	lib, err := ruleset.LoadLibrary(contentRoot)
	require.NoError(t, err)
	mr, client := testutil.NewRedis(t)

	f := &fixture{
		accounts:   newMockAccountStore(),
		characters: &mockCharacterStore{},
		drafts:     draft.NewRepository(client, 0),
		redis:      mr,
		lib:        lib,
	}
	engine := rules.NewEngine(lib, nil, logger)
	f.handler = NewAuthHandler(f.accounts, f.characters, f.drafts, Deps{
		Engine:   engine,
		Screen:   selection.BuildScreen(lib),
		Sessions: session.NewManager(),
		Roller:   dice.NewLoggedRoller(dice.NewSeededSource(7), logger),
		Registry: command.DefaultRegistry(),
	}, logger)
	return f
}

// serve runs the handler behind a Telnet acceptor and returns its address.
func (f *fixture) serve(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	acc := telnet.NewAcceptor(testTelnetConfig(), f.handler, zaptest.NewLogger(t))
	go func() { _ = acc.Serve(l) }()
	require.Eventually(t, acc.IsRunning, 2*time.Second, 5*time.Millisecond)
	t.Cleanup(acc.Stop)
	return l.Addr().String()
}

// pipeOutput collects what a creation screen writes, with styling removed.
type pipeOutput struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (o *pipeOutput) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.buf.String()
}

// newCreation returns a creation screen for a fresh draft whose output is
// captured instead of sent to a client.
func (f *fixture) newCreation(t *testing.T, accountID int64, role string) (*creation, *pipeOutput) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		_ = server.Close()
		_ = client.Close()
	})
	out := &pipeOutput{}
	go func() {
		b := make([]byte, 4096)
		for {
			n, err := client.Read(b)
			out.mu.Lock()
			out.buf.WriteString(telnet.StripANSI(string(b[:n])))
			out.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()

	sess, err := f.handler.sessions.Add(accountID, "tester", role, "pipe")
	require.NoError(t, err)
	return &creation{
		h:     f.handler,
		conn:  telnet.NewConn(server, 0, 0),
		sess:  sess,
		d:     draft.New(accountID),
		state: selection.NewState(),
	}, out
}

// run parses and dispatches one command line.
func run(t *testing.T, c *creation, line string) (outcome, error) {
	t.Helper()
	p := command.Parse(line)
	cmd, ok := c.h.registry.Resolve(p.Command)
	require.True(t, ok, "unknown command in %q", line)
	return c.dispatch(context.Background(), cmd, p)
}

// mustRun dispatches line and fails the test on error.
func mustRun(t *testing.T, c *creation, line string) outcome {
	t.Helper()
	out, err := run(t, c, line)
	require.NoError(t, err, line)
	return out
}
