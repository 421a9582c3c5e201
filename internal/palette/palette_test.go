package palette

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/game"
)

func TestDefaultPalette(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"azul", "rojo", "blanco", "negro", "verde", "purpura"}, p.Names())
	assert.Equal(t, 6, p.Len())
}

func TestParseCode(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	cases := []struct {
		in   string
		want game.Code
		ok   bool
	}{
		{"ARBN", game.Code{0, 1, 2, 3}, true},
		{"arbn", game.Code{0, 1, 2, 3}, true},
		{"  PPVV ", game.Code{5, 5, 4, 4}, true},
		{"azul rojo blanco negro", game.Code{0, 1, 2, 3}, true},
		{"Azul, ROJO,blanco  negro", game.Code{0, 1, 2, 3}, true},
		{"ARBX", nil, false},
		{"ARB", nil, false},
		{"ARBNA", nil, false},
		{"azul rojo blanco", nil, false},
		{"azul rojo blanco amarillo", nil, false},
		{"azul", nil, false},
		{"", nil, false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, ok := p.ParseCode(c.in, 4)
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)
	code := game.Code{0, 0, 1, 1}
	assert.Equal(t, "azul azul rojo rojo", p.Format(code))
	assert.Equal(t, "AARR", p.Abbrev(code))
	assert.Equal(t, []string{"azul", "azul", "rojo", "rojo"}, p.CodeNames(code))
	assert.Equal(t, "?", p.Name(game.Color(9)))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "palette.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
colors:
  - {name: Red, abbr: r}
  - {name: Green, abbr: g}
  - {name: Blue, abbr: b}
`), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "green", "blue"}, p.Names())

	code, ok := p.ParseCode("RGBR", 4)
	require.True(t, ok)
	assert.Equal(t, game.Code{0, 1, 2, 0}, code)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestNewRejectsBadPalettes(t *testing.T) {
	cases := map[string][]Color{
		"empty":          nil,
		"duplicate name": {{"azul", "A"}, {"AZUL", "Z"}},
		"duplicate abbr": {{"azul", "A"}, {"amarillo", "a"}},
		"long abbr":      {{"azul", "AZ"}},
		"digit abbr":     {{"azul", "1"}},
		"blank name":     {{" ", "A"}},
	}
	for name, colors := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(colors)
			assert.Error(t, err)
		})
	}
}
