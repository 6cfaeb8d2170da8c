// Package application implements the vote preprocessing pipeline:
// merge, filter, weight, and aggregate raw vote records into the final
// edge and node lists.
package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-votegraph/internal/domain"
)

// Package-level validator instance for configuration validation.
// Uses go-playground/validator v10 for struct tag-based validation.
var validate = validator.New()

// Config controls a single pipeline run. The zero value is not valid;
// start from DefaultConfig and override fields as needed.
type Config struct {
	// Weighting selects the normalization strategy applied to raw points.
	Weighting domain.WeightingMethod `yaml:"weighting" validate:"required,oneof=none by_participation by_total by_both"`

	// MinParticipations drops countries (and every edge touching them)
	// whose participation count is below the threshold. The default of 1
	// excludes countries with zero recorded destination appearances.
	MinParticipations int `yaml:"min_participations" validate:"min=0"`

	// Top3Only keeps only votes awarding 8 or more points, applied to raw
	// votes before participation counting.
	Top3Only bool `yaml:"top3_only"`

	// FinalOnly keeps only final-round votes, applied to raw votes before
	// participation counting.
	FinalOnly bool `yaml:"final_only"`

	// SelectedCountries restricts the output to an explicit set of country
	// names, mapped to ids via the current node list. Empty means no
	// selection filter. Unknown names are ignored.
	SelectedCountries []string `yaml:"selected_countries" validate:"dive,min=1"`

	// DropZeroEdges removes edges whose summed weighted points are zero.
	DropZeroEdges bool `yaml:"drop_zero_edges"`
}

// DefaultConfig returns the pipeline defaults: no weighting, a
// participation threshold of one, no pre-aggregation filters, no country
// selection, and zero-weight edges dropped.
func DefaultConfig() Config {
	return Config{
		Weighting:         domain.WeightNone,
		MinParticipations: 1,
		DropZeroEdges:     true,
	}
}

// Validate checks the configuration against its constraints and returns
// a domain.ConfigError describing the first violation.
func (c Config) Validate() error {
	if !c.Weighting.Valid() {
		return domain.NewConfigError("weighting",
			fmt.Errorf("%w: %q", domain.ErrUnknownWeighting, c.Weighting))
	}
	if c.MinParticipations < 0 {
		return domain.NewConfigError("min_participations", domain.ErrNegativeMinParticipations)
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewConfigError(verrs[0].Field(), err)
		}
		return domain.NewConfigError("", err)
	}
	return nil
}

// LoadConfigFromFile reads a YAML configuration file, overlaying it on
// the defaults. Decoding is strict: unknown fields are rejected so
// configuration typos cannot be silently ignored.
func LoadConfigFromFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadConfig(data)
}

// LoadConfig parses YAML configuration bytes, overlaying them on the
// defaults, and validates the result.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Strict mode - fail on unknown fields.
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("YAML decode failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
