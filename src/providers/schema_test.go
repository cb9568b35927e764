package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema()

	assert.Equal(t, "call", schema.CallLiteral)
	assert.Equal(t, "put", schema.PutLiteral)
	require.Len(t, schema.DividendRateFields, 2)
	assert.Equal(t, "dividendRate", schema.DividendRateFields[0])
}

func TestLoadSchema(t *testing.T) {
	t.Run("file overrides literals", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.yaml")
		require.NoError(t, os.WriteFile(path, []byte("call_literal: calls\nput_literal: puts\n"), 0644))

		schema, err := LoadSchema(path)
		require.NoError(t, err)

		assert.Equal(t, "calls", schema.CallLiteral)
		assert.Equal(t, "puts", schema.PutLiteral)
		assert.NotEmpty(t, schema.DividendRateFields, "unset fields keep defaults")
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadSchema(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
