package fixture

import (
	"errors"
	"fmt"
	"strings"
)

// Config describes the fixture to generate.
type Config struct {
	// Registry entry
	ModelID     string
	Version     string
	ModelType   string
	Description string

	// Model architecture
	InFeatures  int
	OutFeatures int

	// Output files, relative to <output_dir>/<ModelID>
	ParamsFile   string
	MetadataFile string

	// Seed for parameter initialization; 0 picks a random seed.
	Seed uint64
}

// DefaultConfig returns the configuration of the standard test fixture.
func DefaultConfig() Config {
	return Config{
		ModelID:      "test_model",
		Version:      "1.0.0",
		ModelType:    "linear-regressor",
		Description:  "Simple test model for Solana Oasis",
		InFeatures:   3,
		OutFeatures:  1,
		ParamsFile:   "model.pt",
		MetadataFile: "metadata.json",
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if err := validName("model id", c.ModelID); err != nil {
		return err
	}
	if c.Version == "" {
		return errors.New("version must not be empty")
	}
	if c.ModelType == "" {
		return errors.New("model type must not be empty")
	}
	if c.InFeatures <= 0 || c.OutFeatures <= 0 {
		return fmt.Errorf("feature counts must be positive, got in=%d out=%d", c.InFeatures, c.OutFeatures)
	}
	if err := validName("params file", c.ParamsFile); err != nil {
		return err
	}
	if err := validName("metadata file", c.MetadataFile); err != nil {
		return err
	}
	if c.ParamsFile == c.MetadataFile {
		return fmt.Errorf("params and metadata files must differ, both are %q", c.ParamsFile)
	}
	return nil
}

// validName checks a single path element.
func validName(field, name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%s must not be empty", field)
	case name == "." || name == "..":
		return fmt.Errorf("%s %q is not a valid name", field, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%s %q must not contain path separators", field, name)
	}
	return nil
}
