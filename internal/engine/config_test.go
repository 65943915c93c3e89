package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfigIsValid guards the stock configuration against
// drifting out of its own constraints.
func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

// TestLoadConfig verifies partial YAML layers over the defaults and
// invalid values are rejected.
func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		check       func(t *testing.T, cfg Config)
		expectError bool
	}{
		{
			name: "partial file keeps defaults",
			yaml: "read_timeout_seconds: 5\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 5, cfg.ReadTimeoutSeconds)
				assert.Equal(t, DefaultConfig().BatchConcurrency, cfg.BatchConcurrency)
				assert.Equal(t, 1.0, cfg.DefaultScaleMin)
			},
		},
		{
			name: "full file",
			yaml: strings.Join([]string{
				"read_timeout_seconds: 10",
				"batch_concurrency: 4",
				"read_rate_per_second: 50",
				"default_scale_min: 0",
				"default_scale_max: 10",
				"fail_on_unattributed: true",
			}, "\n"),
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, 4, cfg.BatchConcurrency)
				assert.Equal(t, 50, cfg.ReadRatePerSecond)
				assert.True(t, cfg.FailOnUnattributed)
			},
		},
		{
			name:        "zero timeout rejected",
			yaml:        "read_timeout_seconds: 0\n",
			expectError: true,
		},
		{
			name:        "degenerate default scale rejected",
			yaml:        "default_scale_min: 5\ndefault_scale_max: 5\n",
			expectError: true,
		},
		{
			name:        "unknown field rejected",
			yaml:        "reed_timeout_seconds: 5\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(tt.yaml))

			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}
