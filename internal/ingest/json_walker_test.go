package ingest

import (
	"testing"

	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonWalker(t *testing.T) {
	input := `
{
  "mobs": [
    {"name": "A001C003", "mob_type_id": 2},
    {"name": "Reel 1", "mob_type_id": 1}
  ],
  "meta": {
    "version": "1.0"
  }
}
`
	data, err := oj.ParseString(input)
	require.NoError(t, err)

	w := NewJsonWalker()

	t.Run("select list of objects", func(t *testing.T) {
		matches, err := w.Query(data, "$.mobs[*]")
		require.NoError(t, err)
		require.Len(t, matches, 2)
		first, ok := matches[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "A001C003", first["name"])
	})

	t.Run("filter expression", func(t *testing.T) {
		matches, err := w.Query(data, "$.mobs[?(@.mob_type_id == 1)].name")
		require.NoError(t, err)
		assert.Equal(t, []any{"Reel 1"}, matches)
	})

	t.Run("select primitive", func(t *testing.T) {
		matches, err := w.Query(data, "$.meta.version")
		require.NoError(t, err)
		assert.Equal(t, []any{"1.0"}, matches)
	})

	t.Run("invalid selector", func(t *testing.T) {
		_, err := w.Query(data, "$.mobs[")
		assert.ErrorContains(t, err, "invalid jsonpath")
	})
}
