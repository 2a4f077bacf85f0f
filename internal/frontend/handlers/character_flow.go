package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/frontend/telnet"
	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/command"
	"github.com/cory-johannsen/charforge/internal/game/session"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
	"github.com/cory-johannsen/charforge/internal/storage/postgres"
)

// FormatCharacterSummary returns a one-line description of a finished character.
func FormatCharacterSummary(c *character.Character) string {
	line := fmt.Sprintf("%s%s%s, level %d %s %s",
		telnet.BrightWhite, c.Name, telnet.Reset, c.Level, c.Race, c.Class)
	if len(c.Archetypes) > 0 {
		line += " (" + strings.Join(c.Archetypes, ", ") + ")"
	}
	return line + fmt.Sprintf(", %d hp", c.MaxHP)
}

// characterMenu lists the account's characters and runs menu commands until
// the player quits.
//
// Precondition: sess must be registered with h.sessions; conn must be open.
// Postcondition: Returns nil on quit, or a non-nil error on fatal failure.
func (h *AuthHandler) characterMenu(ctx context.Context, conn *telnet.Conn, sess *session.CreationSession) error {
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		chars, err := h.characters.ListByAccount(ctx, sess.AccountID)
		if err != nil {
			return fmt.Errorf("listing characters: %w", err)
		}
		pending, err := h.drafts.GetByAccount(ctx, sess.AccountID)
		if err != nil && !errors.Is(err, draft.ErrNotFound) {
			return fmt.Errorf("loading draft: %w", err)
		}
		h.showMenu(conn, chars, pending)

		_ = conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "menu> "))
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading menu selection: %w", err)
		}
		parsed := command.Parse(line)

		switch parsed.Command {
		case "":
			continue

		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye."))
			return nil

		case "new", "create":
			d := draft.New(sess.AccountID)
			if pending != nil {
				_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Your unfinished character will be replaced when this one is first saved."))
			}
			done, err := h.runCreation(ctx, conn, sess, d)
			if err != nil || done {
				return err
			}

		case "resume", "continue":
			if pending == nil {
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "You have no unfinished character."))
				continue
			}
			done, err := h.runCreation(ctx, conn, sess, pending)
			if err != nil || done {
				return err
			}

		case "view", "show":
			c, ok := pick(conn, chars, parsed.Args)
			if !ok {
				continue
			}
			if c.Sheet == nil {
				_ = conn.WriteLine(FormatCharacterSummary(c))
				continue
			}
			_ = conn.WriteLines(strings.Split(strings.TrimRight(character.FormatSheet(c.Sheet), "\n"), "\n"))

		case "delete":
			c, ok := pick(conn, chars, parsed.Args)
			if !ok {
				continue
			}
			err := h.characters.Delete(ctx, sess.AccountID, c.ID)
			switch {
			case errors.Is(err, postgres.ErrCharacterNotFound):
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That character no longer exists."))
			case err != nil:
				h.logger.Error("deleting character", zap.Int64("character", c.ID), zap.Error(err))
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
			default:
				h.logger.Info("character deleted",
					zap.String("username", sess.Username),
					zap.String("character", c.Name),
				)
				_ = conn.WriteLine(telnet.Colorf(telnet.Green, "%s has been deleted.", c.Name))
			}

		default:
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid selection."))
		}
	}
}

func (h *AuthHandler) showMenu(conn *telnet.Conn, chars []*character.Character, pending *draft.Draft) {
	lines := []string{""}
	if len(chars) == 0 {
		lines = append(lines, telnet.Colorize(telnet.BrightYellow, "You have no characters yet."))
	} else {
		lines = append(lines, telnet.Colorize(telnet.BrightWhite, "Your characters:"))
		for i, c := range chars {
			lines = append(lines, fmt.Sprintf("  %s%d%s. %s", telnet.Green, i+1, telnet.Reset, FormatCharacterSummary(c)))
		}
	}
	lines = append(lines, "", menuOption("new", "Create a new character"))
	if pending != nil {
		label := "Resume your unfinished character"
		if pending.Choices.Name != "" {
			label = "Resume " + pending.Choices.Name
		}
		lines = append(lines, menuOption("resume", label))
	}
	if len(chars) > 0 {
		lines = append(lines,
			menuOption("view <n>", "Show a character sheet"),
			menuOption("delete <n>", "Delete a character"),
		)
	}
	lines = append(lines, menuOption("quit", "Disconnect"))
	_ = conn.WriteLines(lines)
}

func menuOption(usage, help string) string {
	return "  " + telnet.Colorize(telnet.Green, telnet.Pad(usage, 12)) + help
}

// pick resolves a 1-based character number from args, reporting bad input to conn.
func pick(conn *telnet.Conn, chars []*character.Character, args []string) (*character.Character, bool) {
	if len(chars) == 0 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "You have no characters."))
		return nil, false
	}
	if len(args) == 0 {
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Which character? Give its number."))
		return nil, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(chars) {
		_ = conn.WriteLine(telnet.Colorf(telnet.Red, "Choose a number from 1 to %d.", len(chars)))
		return nil, false
	}
	return chars[n-1], true
}
