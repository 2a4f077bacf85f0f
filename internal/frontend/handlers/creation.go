package handlers

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/frontend/telnet"
	"github.com/cory-johannsen/charforge/internal/game/command"
	"github.com/cory-johannsen/charforge/internal/game/selection"
	"github.com/cory-johannsen/charforge/internal/game/session"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
)

// outcome tells the creation loop what to do after a command.
type outcome int

const (
	stay       outcome = iota // keep editing
	leave                     // return to the character menu
	disconnect                // end the connection
)

// errInternal is reported to the player as a generic failure; the cause has
// already been logged.
var errInternal = errors.New("an internal error occurred, please try again")

// creation is one run of the creation screen over a single draft.
type creation struct {
	h     *AuthHandler
	conn  *telnet.Conn
	sess  *session.CreationSession
	d     *draft.Draft
	state *selection.State

	// changed is set by handlers that modify the draft's choices.
	changed bool
	// moved is set by the navigation subscription.
	moved bool
}

// runCreation edits d on the creation screen until the player saves,
// cancels or quits. Every change is written to the draft store before the
// next prompt, so a dropped connection loses at most the command in flight.
//
// Precondition: d.AccountID == sess.AccountID.
// Postcondition: Returns true when the connection should end.
func (h *AuthHandler) runCreation(ctx context.Context, conn *telnet.Conn, sess *session.CreationSession, d *draft.Draft) (bool, error) {
	c := &creation{h: h, conn: conn, sess: sess, d: d, state: selection.NewState()}
	if d.View.Tab != "" {
		c.state.Restore(d.View)
	}
	unsubscribe := c.state.Subscribe(func(selection.Change) { c.moved = true })
	defer unsubscribe()

	if d.ID != "" {
		if err := h.sessions.SetDraft(sess.ID, d.ID); err != nil {
			h.logger.Warn("recording session draft", zap.Error(err))
		}
	}
	h.logger.Info("creation started",
		zap.String("username", sess.Username),
		zap.String("draft", d.ID),
	)
	_ = conn.WriteLine(telnet.Colorize(telnet.BrightCyan, "\r\n=== Character Creation ===") +
		"  Type 'help' for commands.")
	c.render()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Your draft has been kept."))
			return true, ctx.Err()
		default:
		}

		if err := conn.WritePrompt(c.prompt()); err != nil {
			return true, fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return true, fmt.Errorf("reading input: %w", err)
		}

		parsed := command.Parse(line)
		if parsed.Command == "" {
			continue
		}
		cmd, ok := h.registry.Resolve(parsed.Command)
		if !ok || !cmd.Allowed(sess.Role) {
			_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown command: %s. Type 'help' for available commands.", parsed.Command))
			continue
		}

		out, err := c.dispatch(ctx, cmd, parsed)
		if err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, upperFirst(err.Error())+"."))
		}
		if out != stay {
			return out == disconnect, nil
		}
		if err := c.persist(ctx); err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Your draft could not be saved."))
		}
	}
}

// persist saves the draft and redraws the screen when anything changed
// since the last prompt. A failed save leaves the flags set so the next
// prompt tries again.
func (c *creation) persist(ctx context.Context) error {
	if !c.changed && !c.moved {
		return nil
	}
	c.d.View = c.state.View()

	firstSave := c.d.ID == ""
	if err := c.h.drafts.Save(ctx, c.d); err != nil {
		if firstSave {
			// Save assigns the id before writing; a retry must register it.
			c.d.ID = ""
		}
		c.h.logger.Error("saving draft",
			zap.String("username", c.sess.Username),
			zap.String("draft", c.d.ID),
			zap.Error(err),
		)
		return err
	}
	c.changed, c.moved = false, false
	if firstSave {
		if err := c.h.sessions.SetDraft(c.sess.ID, c.d.ID); err != nil {
			c.h.logger.Warn("recording session draft", zap.Error(err))
		}
	}
	c.render()
	return nil
}

func (c *creation) render() {
	_ = c.conn.WriteLines(append([]string{""}, c.h.renderer.Render(c.state.View(), c.d)...))
}

func (c *creation) prompt() string {
	v := c.state.View()
	label := selection.Label(string(v.Tab))
	switch v.Tab {
	case selection.TabRace:
		label += "/" + selection.Label(string(v.RaceTab))
	case selection.TabClass:
		label += "/" + selection.Label(string(v.ClassTab))
	}
	return telnet.Colorf(telnet.BrightWhite, "[%s]> ", label)
}

// say writes informational lines to the player.
func (c *creation) say(lines ...string) {
	_ = c.conn.WriteLines(lines)
}
