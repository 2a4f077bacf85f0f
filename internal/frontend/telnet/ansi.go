// Package telnet serves the creation screen over Telnet: connection handling,
// the acceptor, and ANSI styling helpers for rendering panels.
package telnet

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ANSI escape codes.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Underline = "\033[4m"
	Reverse   = "\033[7m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightBlack  = "\033[90m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"

	// ClearScreen erases the terminal and homes the cursor.
	ClearScreen = "\033[2J\033[H"
)

// Colorize wraps text with the given ANSI code and a reset suffix.
func Colorize(color, text string) string {
	return color + text + Reset
}

// Colorf wraps a formatted string with the given ANSI code.
func Colorf(color, format string, args ...interface{}) string {
	return color + fmt.Sprintf(format, args...) + Reset
}

var sgrPattern = regexp.MustCompile("\033\\[[0-9;]*[A-Za-z]")

// StripANSI removes ANSI escape sequences.
func StripANSI(s string) string {
	return sgrPattern.ReplaceAllString(s, "")
}

// VisibleWidth is the number of runes shown for s once styling is removed.
func VisibleWidth(s string) int {
	return utf8.RuneCountInString(StripANSI(s))
}

// Pad right-pads s with spaces to width visible columns. Wider strings are
// returned unchanged.
func Pad(s string, width int) string {
	if n := VisibleWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// Heading renders a panel title underlined with rule characters.
func Heading(title string) []string {
	return []string{
		Colorize(Bold+BrightWhite, title),
		Colorize(BrightBlack, strings.Repeat("─", utf8.RuneCountInString(title))),
	}
}

// Wrap breaks plain text into lines no wider than width, preserving blank
// lines between paragraphs.
//
// Precondition: width > 0.
func Wrap(text string, width int) []string {
	var out []string
	for i, para := range strings.Split(strings.TrimSpace(text), "\n\n") {
		if i > 0 {
			out = append(out, "")
		}
		line := ""
		for _, w := range strings.Fields(para) {
			switch {
			case line == "":
				line = w
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) <= width:
				line += " " + w
			default:
				out = append(out, line)
				line = w
			}
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Columns lays items out in rows of cols cells, each cell padded to width.
func Columns(items []string, cols, width int) []string {
	if cols < 1 {
		cols = 1
	}
	var out []string
	for i := 0; i < len(items); i += cols {
		end := i + cols
		if end > len(items) {
			end = len(items)
		}
		var b strings.Builder
		for j, item := range items[i:end] {
			if j < end-i-1 {
				item = Pad(item, width)
			}
			b.WriteString(item)
		}
		out = append(out, b.String())
	}
	return out
}
