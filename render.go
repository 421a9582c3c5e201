package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/palette"
)

// pegColors is indexed by palette position and wraps for larger palettes.
var pegColors = []*color.Color{
	color.New(color.FgBlue, color.Bold),
	color.New(color.FgRed, color.Bold),
	color.New(color.FgWhite, color.Bold),
	color.New(color.FgHiBlack, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgMagenta, color.Bold),
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgCyan, color.Bold),
}

// pegs renders a code as colored abbreviation letters followed by the names.
func pegs(pal *palette.Palette, code game.Code) string {
	letters := pal.Abbrev(code)
	var b strings.Builder
	for i, c := range code {
		b.WriteString(pegColors[int(c)%len(pegColors)].Sprint(letters[i : i+1]))
	}
	return fmt.Sprintf("%s  (%s)", b.String(), pal.Format(code))
}

// legend lists the palette with abbreviations.
func legend(pal *palette.Palette) string {
	parts := make([]string, 0, pal.Len())
	for i, c := range pal.Colors() {
		parts = append(parts, pegColors[i%len(pegColors)].Sprint(c.Abbr)+"="+c.Name)
	}
	return strings.Join(parts, "  ")
}

// stateLine colors the final state.
func stateLine(st game.State) string {
	switch st {
	case game.Solved:
		return color.GreenString(st.String())
	case game.Exhausted:
		return color.YellowString(st.String())
	default:
		return color.RedString(st.String())
	}
}

// evolution renders a search-space history as "1296 → 208 → …".
func evolution(history []int) string {
	parts := make([]string, len(history))
	for i, n := range history {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " → ")
}
