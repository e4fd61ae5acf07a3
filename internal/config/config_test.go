package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "input", cfg.Paths.InputDir)
	assert.Equal(t, "parse.yaml", cfg.Parse.ConfigFile)
	assert.NotEmpty(t, cfg.Security.AllowedOrigins)
	assert.NoError(t, cfg.validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "negative read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = -1 },
			wantErr: "read timeout",
		},
		{
			name:    "no origins",
			mutate:  func(c *Config) { c.Security.AllowedOrigins = nil },
			wantErr: "allowed origin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestParseConfigFromYAML(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		pc, err := ParseConfigFromYAML([]byte(`
branches: [North, South, East]
revenue:
  header_row: 2
hours:
  start_row: 40
  end_row: 52
  sheet: Hours
fuzzy_threshold: 0.8
min_data_cells: 3
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"North", "South", "East"}, pc.Branches)
		require.NotNil(t, pc.Revenue.HeaderRow)
		assert.Equal(t, 2, *pc.Revenue.HeaderRow)
		assert.True(t, pc.Hours.HasRange())
		assert.Equal(t, "Hours", pc.Hours.Sheet)
		assert.InDelta(t, 0.8, pc.FuzzyThreshold, 1e-9)
		assert.Equal(t, 3, pc.MinDataCells)
	})

	t.Run("zero row index is preserved", func(t *testing.T) {
		pc, err := ParseConfigFromYAML([]byte("branches: [North]\nrevenue:\n  header_row: 0\n"))
		require.NoError(t, err)
		require.NotNil(t, pc.Revenue.HeaderRow)
		assert.Equal(t, 0, *pc.Revenue.HeaderRow)
	})

	t.Run("missing branches rejected", func(t *testing.T) {
		_, err := ParseConfigFromYAML([]byte("fuzzy_threshold: 0.8\n"))
		assert.Error(t, err)
	})

	t.Run("threshold out of range rejected", func(t *testing.T) {
		_, err := ParseConfigFromYAML([]byte("branches: [North]\nfuzzy_threshold: 1.5\n"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml rejected", func(t *testing.T) {
		_, err := ParseConfigFromYAML([]byte("branches: ["))
		assert.Error(t, err)
	})
}

func TestLoadParseConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("branches: [North, South]\n"), 0644))

	pc, err := LoadParseConfig(path)
	require.NoError(t, err)
	assert.Len(t, pc.Branches, 2)

	_, err = LoadParseConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "/abs/a", ResolvePath("/base", "/abs/a"))
	assert.Equal(t, filepath.Join("/base", "rel"), ResolvePath("/base", "rel"))
	assert.Equal(t, "rel", ResolvePath("", "rel"))
}
