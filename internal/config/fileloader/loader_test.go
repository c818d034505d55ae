package fileloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/progress-tally/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFileLoader_Load_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
fixture:
  maps: 4
tally:
  strategy: parallel
  target: partial
  workers: 2
bench:
  ranges:
    - from: 10
      to: 20
  format: yaml
`)

	cfg, err := NewFileLoader(path).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Fixture.Maps)
	assert.Equal(t, 100, cfg.Fixture.Size, "unset values keep defaults")
	assert.Equal(t, "parallel", cfg.Tally.Strategy)
	assert.Equal(t, "partial", cfg.Tally.Target)
	assert.Equal(t, 2, cfg.Tally.Workers)
	assert.Equal(t, []config.SizeRange{{From: 10, To: 20}}, cfg.Bench.Ranges)
	assert.Equal(t, config.OutputFormatYAML, cfg.Bench.Format)
	assert.Equal(t, []string{"sequential", "parallel"}, cfg.Bench.Strategies)
}

func TestFileLoader_Load_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := NewFileLoader(writeConfig(t, "fixture: [")).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := NewFileLoader(writeConfig(t, "tally:\n  target: finished\n")).Load(context.Background())
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}
