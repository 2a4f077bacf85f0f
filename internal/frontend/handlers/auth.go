// Package handlers runs the Telnet side of the character creator: login,
// the character menu and the interactive creation screen.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/frontend/telnet"
	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/command"
	"github.com/cory-johannsen/charforge/internal/game/dice"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/selection"
	"github.com/cory-johannsen/charforge/internal/game/session"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
	"github.com/cory-johannsen/charforge/internal/storage/postgres"
)

// AccountStore defines the account persistence operations required by AuthHandler.
type AccountStore interface {
	Create(ctx context.Context, username, password string) (postgres.Account, error)
	Authenticate(ctx context.Context, username, password string) (postgres.Account, error)
}

// CharacterStore defines the character persistence operations required by AuthHandler.
type CharacterStore interface {
	ListByAccount(ctx context.Context, accountID int64) ([]*character.Character, error)
	Create(ctx context.Context, c *character.Character) (*character.Character, error)
	Delete(ctx context.Context, accountID, id int64) error
}

// DraftStore defines the draft persistence operations required by AuthHandler.
type DraftStore interface {
	Save(ctx context.Context, d *draft.Draft) error
	GetByAccount(ctx context.Context, accountID int64) (*draft.Draft, error)
	Delete(ctx context.Context, id string) error
}

const welcomeBanner = `
` + telnet.Bold + telnet.BrightCyan + `
   ___ _                 ___
  / __| |_  __ _ _ _ ___| __|__ _ _ __ _ ___
 | (__| ' \/ _' | '_|___| _/ _ \ '_/ _' / -_)
  \___|_||_\__,_|_|     |_|\___/_| \__, \___|
                                   |___/` + telnet.Reset + `

` + telnet.BrightYellow + `  Pathfinder character creation` + telnet.Reset + `

  Type ` + telnet.Green + `login <username> <password>` + telnet.Reset + ` to connect.
  Type ` + telnet.Green + `register <username> <password>` + telnet.Reset + ` to create an account.
  Type ` + telnet.Green + `quit` + telnet.Reset + ` to disconnect.
`

// Deps bundles what AuthHandler needs beyond its stores.
type Deps struct {
	Engine   *rules.Engine
	Screen   *selection.Screen
	Sessions *session.Manager
	Roller   *dice.Roller
	Registry *command.Registry
}

// AuthHandler implements telnet.SessionHandler and processes the
// authentication loop for a connected client.
type AuthHandler struct {
	accounts   AccountStore
	characters CharacterStore
	drafts     DraftStore
	engine     *rules.Engine
	renderer   *Renderer
	sessions   *session.Manager
	roller     *dice.Roller
	registry   *command.Registry
	logger     *zap.Logger
}

// NewAuthHandler creates an AuthHandler backed by the given stores.
//
// Precondition: accounts, characters, drafts, logger and every field of deps
// must be non-nil.
// Postcondition: Returns an AuthHandler ready to handle sessions.
func NewAuthHandler(
	accounts AccountStore,
	characters CharacterStore,
	drafts DraftStore,
	deps Deps,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		characters: characters,
		drafts:     drafts,
		engine:     deps.Engine,
		renderer:   NewRenderer(deps.Engine, deps.Screen),
		sessions:   deps.Sessions,
		roller:     deps.Roller,
		registry:   deps.Registry,
		logger:     logger,
	}
}

// HandleSession implements telnet.SessionHandler. It shows the welcome banner
// and processes authentication commands until the player logs in or quits.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
func (h *AuthHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	start := time.Now()
	addr := conn.RemoteAddr().String()

	if err := conn.Write([]byte(strings.ReplaceAll(welcomeBanner, "\n", "\r\n"))); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}

		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		parsed := command.Parse(line)
		switch parsed.Command {
		case "":
			continue

		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			h.logger.Info("client quit",
				zap.String("remote_addr", addr),
				zap.Duration("session_duration", time.Since(start)),
			)
			return nil

		case "login":
			acct, err := h.handleLogin(ctx, conn, parsed.Args)
			if err != nil {
				return err
			}
			if acct.ID == 0 {
				continue
			}
			h.logger.Info("player logged in",
				zap.String("remote_addr", addr),
				zap.String("username", acct.Username),
				zap.String("role", acct.Role),
				zap.Duration("login_time", time.Since(start)),
			)
			return h.loggedIn(ctx, conn, acct)

		case "register":
			if err := h.handleRegister(ctx, conn, parsed.Args); err != nil {
				return err
			}

		case "help":
			h.showHelp(conn)

		default:
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", parsed.Command))
		}
	}
}

// loggedIn registers the session, relays its notices to conn and runs the
// character menu until the player quits.
func (h *AuthHandler) loggedIn(ctx context.Context, conn *telnet.Conn, acct postgres.Account) error {
	sess, err := h.sessions.Add(acct.ID, acct.Username, acct.Role, conn.RemoteAddr().String())
	if errors.Is(err, session.ErrAlreadyConnected) {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That account is already connected."))
		return nil
	}
	if err != nil {
		return fmt.Errorf("registering session: %w", err)
	}
	defer func() {
		if err := h.sessions.Remove(sess.ID); err != nil {
			h.logger.Warn("removing session", zap.String("session", sess.ID), zap.Error(err))
		}
	}()

	go relayNotices(conn, sess.Inbox.Events())
	return h.characterMenu(ctx, conn, sess)
}

// relayNotices writes every notice to conn until the channel closes.
func relayNotices(conn *telnet.Conn, events <-chan []byte) {
	for msg := range events {
		_ = conn.WriteLine("\r\n" + telnet.Colorize(telnet.BrightYellow, "[notice] "+string(msg)))
	}
}

// handleLogin authenticates a player.
//
// Postcondition: Returns (acct, nil) on success, (postgres.Account{}, nil) if the error was
// shown to the user and the auth loop should continue, or (postgres.Account{}, error) on fatal errors.
func (h *AuthHandler) handleLogin(ctx context.Context, conn *telnet.Conn, args []string) (postgres.Account, error) {
	if len(args) < 2 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: login <username> <password>"))
		return postgres.Account{}, nil
	}

	username := args[0]
	password := args[1]

	start := time.Now()
	acct, err := h.accounts.Authenticate(ctx, username, password)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrAccountNotFound):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Account not found. Use 'register' to create one."))
			return postgres.Account{}, nil
		case errors.Is(err, postgres.ErrInvalidCredentials):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid password."))
			return postgres.Account{}, nil
		default:
			h.logger.Error("authentication error", zap.Error(err), zap.Duration("elapsed", elapsed))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
			return postgres.Account{}, nil
		}
	}

	_ = conn.WriteLine(telnet.Colorf(telnet.Green, "Welcome back, %s!", acct.Username))
	return acct, nil
}

func (h *AuthHandler) handleRegister(ctx context.Context, conn *telnet.Conn, args []string) error {
	if len(args) < 2 {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: register <username> <password>"))
	}

	username := args[0]
	password := args[1]
	if err := postgres.ValidateCredentials(username, password); err != nil {
		return conn.WriteLine(telnet.Colorize(telnet.Red, upperFirst(err.Error())+"."))
	}

	start := time.Now()
	acct, err := h.accounts.Create(ctx, username, password)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, postgres.ErrAccountExists) {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That username is already taken."))
			return nil
		}
		h.logger.Error("registration error", zap.Error(err), zap.Duration("elapsed", elapsed))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
		return nil
	}

	h.logger.Info("account registered", zap.String("username", acct.Username), zap.Int64("account", acct.ID))
	_ = conn.WriteLine(telnet.Colorf(telnet.Green, "Account created: %s. You may now 'login'.", acct.Username))
	return nil
}

func (h *AuthHandler) showHelp(conn *telnet.Conn) {
	_ = conn.WriteLines([]string{
		telnet.Colorize(telnet.BrightWhite, "Available commands:"),
		"  " + telnet.Colorize(telnet.Green, telnet.Pad("login <username> <password>", 32)) + "Log in to your account",
		"  " + telnet.Colorize(telnet.Green, telnet.Pad("register <username> <password>", 32)) + "Create a new account",
		"  " + telnet.Colorize(telnet.Green, telnet.Pad("help", 32)) + "Show this help",
		"  " + telnet.Colorize(telnet.Green, telnet.Pad("quit", 32)) + "Disconnect",
	})
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
