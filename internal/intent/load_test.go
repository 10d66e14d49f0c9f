package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeepsFileOrder(t *testing.T) {
	data := []byte(`
WELL_BEING: ["कैसे "]
GREETING:
  - नमस्ते
  - हेलो
`)

	table, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"WELL_BEING", "GREETING"}, table.Labels())
	assert.Equal(t, []string{"नमस्ते", "हेलो"}, table[1].Keywords)

	// order flipped relative to the built-in table
	assert.Equal(t, "WELL_BEING", Match("नमस्ते कैसे हो", table))
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"empty":       ``,
		"sequence":    `- a`,
		"scalar list": `A: text`,
		"no keywords": `A: []`,
		"duplicate":   "A: [x]\nA: [y]",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intents.yaml")
	require.NoError(t, os.WriteFile(path, []byte("TIME: [समय]\nEXIT: [बंद]\n"), 0o644))

	table, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EXIT", Match("बंद करो", table))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
