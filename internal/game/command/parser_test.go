package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("   ")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("sheet")
	assert.Equal(t, "sheet", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_Lowercase(t *testing.T) {
	assert.Equal(t, "race", Parse("RACE Elf").Command)
	assert.Equal(t, []string{"Elf"}, Parse("RACE Elf").Args)
}

func TestParse_ExtraWhitespace(t *testing.T) {
	result := Parse("  name   Merisiel   of Riddleport  ")
	assert.Equal(t, "name", result.Command)
	assert.Equal(t, []string{"Merisiel", "of", "Riddleport"}, result.Args)
	assert.Equal(t, "Merisiel   of Riddleport", result.RawArgs)
}

func TestParseResult_Joined(t *testing.T) {
	result := Parse("race half elf")
	assert.Equal(t, "half elf", result.Joined(0))
	assert.Equal(t, "elf", result.Joined(1))
	assert.Equal(t, "", result.Joined(2))
}

func TestPropertyParseAlwaysLowercasesCommand(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,20}`).Draw(t, "word")
		result := Parse(word)
		for _, c := range result.Command {
			if c >= 'A' && c <= 'Z' {
				t.Fatalf("command %q contains uppercase char in Parse result %q", word, result.Command)
			}
		}
	})
}

func TestPropertyJoinedRoundTripsArgs(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 1, 5).Draw(t, "words")
		line := "cmd"
		for _, w := range words {
			line += " " + w
		}
		result := Parse(line)
		if len(result.Args) != len(words) {
			t.Fatalf("args %v, want %v", result.Args, words)
		}
		if result.Joined(0) != result.RawArgs {
			t.Fatalf("joined %q != raw %q", result.Joined(0), result.RawArgs)
		}
	})
}
