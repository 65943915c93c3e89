// Package engine orchestrates aggregation runs: it reads the frozen
// inputs from collaborator stores, drives the stage pipeline through
// the run state machine, and persists the resulting record.
package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Package-level validator instance for configuration validation.
var validate = validator.New()

// Config controls orchestration behavior. Zero values are replaced by
// DefaultConfig equivalents where noted.
type Config struct {
	// ReadTimeoutSeconds bounds the read phase: the collaborator I/O
	// that gathers weights, items, panel, and responses. The compute
	// phases are unbounded; they are CPU-bound and fast.
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds" validate:"min=1,max=600"`

	// BatchConcurrency caps the number of (survey, subject) runs the
	// batch runner executes in parallel.
	BatchConcurrency int `yaml:"batch_concurrency" validate:"min=1,max=256"`

	// ReadRatePerSecond throttles read-phase starts across a batch, to
	// keep the engine from saturating the shared response store.
	// Zero disables throttling.
	ReadRatePerSecond int `yaml:"read_rate_per_second" validate:"min=0,max=10000"`

	// DefaultScaleMin and DefaultScaleMax bound rating items without
	// declared bounds.
	DefaultScaleMin float64 `yaml:"default_scale_min"`
	DefaultScaleMax float64 `yaml:"default_scale_max" validate:"gtfield=DefaultScaleMin"`

	// FailOnUnattributed escalates responses from respondents missing
	// from the panel to run failures instead of warnings.
	FailOnUnattributed bool `yaml:"fail_on_unattributed"`
}

// DefaultConfig returns the stock engine configuration: a 30 second
// read budget, eight parallel runs, no read throttling, 1-5 default
// rating scale.
func DefaultConfig() Config {
	return Config{
		ReadTimeoutSeconds: 30,
		BatchConcurrency:   8,
		DefaultScaleMin:    1,
		DefaultScaleMax:    5,
	}
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("engine configuration: %w", err)
	}
	return nil
}

// LoadConfig reads a YAML engine configuration, layered over
// DefaultConfig so partial files stay valid.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("parsing engine configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile is a convenience wrapper over LoadConfig for a path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("opening engine configuration: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}
