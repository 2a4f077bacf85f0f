package telnet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mdanger\033[0m", Colorize(Red, "danger"))
	assert.Equal(t, "\033[32mranks: 4\033[0m", Colorf(Green, "ranks: %d", 4))
}

func TestStripANSI(t *testing.T) {
	in := "\033[31mred\033[0m normal \033[1m\033[32mbold green\033[0m" + ClearScreen
	assert.Equal(t, "red normal bold green", StripANSI(in))
	assert.Equal(t, "plain text", StripANSI("plain text"))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "elf  ", Pad("elf", 5))
	styled := Pad(Colorize(Bold, "elf"), 5)
	assert.Equal(t, 5, VisibleWidth(styled))
	assert.Equal(t, "halfling", Pad("halfling", 4))
}

func TestHeading(t *testing.T) {
	lines := Heading("Dwarf")
	assert.Equal(t, "Dwarf", StripANSI(lines[0]))
	assert.Equal(t, "─────", StripANSI(lines[1]))
}

func TestWrap(t *testing.T) {
	got := Wrap("Dwarves are a stoic but stern race.\n\nThey love gold.", 16)
	assert.Equal(t, []string{"Dwarves are a", "stoic but stern", "race.", "", "They love gold."}, got)
	assert.Empty(t, Wrap("   ", 10))
}

func TestColumns(t *testing.T) {
	got := Columns([]string{"dwarf", "elf", "gnome"}, 2, 8)
	assert.Equal(t, []string{"dwarf   elf", "gnome"}, got)
}

// Property: wrapped lines never exceed the width unless a single word does,
// and no word is lost.
func TestPropertyWrap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,12}`), 0, 40).Draw(t, "words")
		width := rapid.IntRange(12, 60).Draw(t, "width")
		lines := Wrap(strings.Join(words, " "), width)
		for _, l := range lines {
			if len(l) > width {
				t.Fatalf("line %q wider than %d", l, width)
			}
		}
		assert.Equal(t, strings.Join(words, " "), strings.Join(lines, " "))
	})
}

// Property: styling never changes the visible text.
func TestPropertyStripANSIRecoversText(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[ -~]{0,40}`).Draw(t, "s")
		color := rapid.SampledFrom([]string{Bold, Red, BrightCyan, Bold + Yellow}).Draw(t, "color")
		assert.Equal(t, s, StripANSI(Colorize(color, s)))
		assert.Equal(t, len(s), VisibleWidth(Colorize(color, s)))
	})
}
