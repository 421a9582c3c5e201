// internal/palette/palette.go
//
// Color palette management and code parsing for the CLI and HTTP layers.
//
// Responsibilities:
//   - Load the palette (color names + one-letter abbreviations) from a YAML
//     file, or fall back to the embedded six-color default.
//   - Parse user text into game.Code values and render codes back to text.
//
// Palette file format:
//
//	colors:
//	  - name: azul
//	    abbr: A
//
// Accepted code input (case-insensitive):
//   - exactly <length> abbreviation letters, e.g. "ARBN";
//   - <length> color names separated by spaces and/or commas,
//     e.g. "azul, rojo blanco negro".
//
// The engine itself never parses text; everything here is input plumbing.

package palette

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/mastermind/internal/game"
)

//go:embed default_palette.yaml
var embeddedPalette []byte

// Color is one palette entry.
type Color struct {
	Name string `yaml:"name" json:"name"`
	Abbr string `yaml:"abbr" json:"abbr"`
}

// Palette is an ordered list of colors; a color's index is its game.Color.
type Palette struct {
	colors []Color
	byName map[string]game.Color
	byAbbr map[rune]game.Color
}

type paletteFile struct {
	Colors []Color `yaml:"colors"`
}

var (
	defaultOnce sync.Once
	defaultPal  *Palette
	defaultErr  error
)

// Default returns the embedded palette, parsed once.
func Default() (*Palette, error) {
	defaultOnce.Do(func() {
		defaultPal, defaultErr = Parse(embeddedPalette)
	})
	return defaultPal, defaultErr
}

// Load reads a palette from path, or returns Default when path is empty.
func Load(path string) (*Palette, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read palette %s: %w", path, err)
	}
	p, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML palette document.
func Parse(b []byte) (*Palette, error) {
	var f paletteFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode palette: %w", err)
	}
	return New(f.Colors)
}

// New validates colors and builds the lookup tables.
// Names are matched case-insensitively, abbreviations must be single letters.
func New(colors []Color) (*Palette, error) {
	if len(colors) == 0 {
		return nil, errors.New("palette has no colors")
	}
	if len(colors) > game.MaxColors {
		return nil, fmt.Errorf("palette has %d colors, at most %d supported", len(colors), game.MaxColors)
	}
	p := &Palette{
		byName: make(map[string]game.Color, len(colors)),
		byAbbr: make(map[rune]game.Color, len(colors)),
	}
	for i, c := range colors {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" || strings.ContainsAny(name, " ,\t") {
			return nil, fmt.Errorf("color %d: invalid name %q", i, c.Name)
		}
		if _, dup := p.byName[name]; dup {
			return nil, fmt.Errorf("color %d: duplicate name %q", i, name)
		}
		abbr := strings.ToUpper(strings.TrimSpace(c.Abbr))
		r, size := utf8.DecodeRuneInString(abbr)
		if size == 0 || size != len(abbr) || !unicode.IsLetter(r) {
			return nil, fmt.Errorf("color %q: abbreviation must be one letter, got %q", name, c.Abbr)
		}
		if _, dup := p.byAbbr[r]; dup {
			return nil, fmt.Errorf("color %q: duplicate abbreviation %q", name, abbr)
		}
		p.byName[name] = game.Color(i)
		p.byAbbr[r] = game.Color(i)
		p.colors = append(p.colors, Color{Name: name, Abbr: abbr})
	}
	return p, nil
}

// Names returns the color names in index order, as NewEngine expects them.
func (p *Palette) Names() []string {
	out := make([]string, len(p.colors))
	for i, c := range p.colors {
		out[i] = c.Name
	}
	return out
}

// Colors returns a copy of the palette entries.
func (p *Palette) Colors() []Color { return append([]Color(nil), p.colors...) }

// Len is the number of colors.
func (p *Palette) Len() int { return len(p.colors) }

// ParseCode turns user input into a code of the given length.
// It reports false for anything that is not a well-formed code.
func (p *Palette) ParseCode(text string, length int) (game.Code, bool) {
	text = strings.TrimSpace(text)
	if text == "" || length <= 0 {
		return nil, false
	}
	if code, ok := p.parseAbbrev(text, length); ok {
		return code, true
	}
	return p.parseNames(text, length)
}

func (p *Palette) parseAbbrev(text string, length int) (game.Code, bool) {
	if utf8.RuneCountInString(text) != length {
		return nil, false
	}
	code := make(game.Code, 0, length)
	for _, r := range strings.ToUpper(text) {
		c, ok := p.byAbbr[r]
		if !ok {
			return nil, false
		}
		code = append(code, c)
	}
	return code, true
}

func (p *Palette) parseNames(text string, length int) (game.Code, bool) {
	parts := strings.Fields(strings.ReplaceAll(strings.ToLower(text), ",", " "))
	if len(parts) != length {
		return nil, false
	}
	code := make(game.Code, 0, length)
	for _, part := range parts {
		c, ok := p.byName[part]
		if !ok {
			return nil, false
		}
		code = append(code, c)
	}
	return code, true
}

// Format renders a code as space-separated color names.
func (p *Palette) Format(code game.Code) string {
	parts := make([]string, len(code))
	for i, c := range code {
		parts[i] = p.Name(c)
	}
	return strings.Join(parts, " ")
}

// Abbrev renders a code as its abbreviation letters, e.g. "AARR".
func (p *Palette) Abbrev(code game.Code) string {
	var b strings.Builder
	for _, c := range code {
		if int(c) < len(p.colors) {
			b.WriteString(p.colors[c].Abbr)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// Name returns the name of a color index, or "?" when out of range.
func (p *Palette) Name(c game.Color) string {
	if int(c) >= len(p.colors) {
		return "?"
	}
	return p.colors[c].Name
}

// CodeNames converts a code to its color names.
func (p *Palette) CodeNames(code game.Code) []string {
	out := make([]string, len(code))
	for i, c := range code {
		out[i] = p.Name(c)
	}
	return out
}
