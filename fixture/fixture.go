// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package fixture

import (
	"go.uber.org/zap"

	"github.com/born-ml/modelfixture/internal/fixture"
)

// Config describes the fixture to generate.
type Config = fixture.Config

// Metadata is the JSON sidecar written next to the parameter file.
type Metadata = fixture.Metadata

// Generator writes fixtures for one Config.
type Generator = fixture.Generator

// Result describes the files written by a single Generate call.
type Result = fixture.Result

// Fixture is a generated fixture read back from disk.
type Fixture = fixture.Fixture

// Errors

// FilesystemError reports a failed directory or file operation.
type FilesystemError = fixture.FilesystemError

// SerializationError reports a failure to encode or decode fixture contents.
type SerializationError = fixture.SerializationError

// Consistency errors between the parameter file and the metadata sidecar.
var (
	ErrShapeMismatch   = fixture.ErrShapeMismatch
	ErrModelIDMismatch = fixture.ErrModelIDMismatch
)

// DefaultConfig returns the configuration of the standard test fixture
// (id "test_model", version "1.0.0", 3 inputs, 1 output).
func DefaultConfig() Config {
	return fixture.DefaultConfig()
}

// NewGenerator validates cfg and returns a Generator. A nil logger discards logs.
//
// Example:
//
//	cfg := fixture.DefaultConfig()
//	cfg.Seed = 42
//	g, err := fixture.NewGenerator(cfg, zap.NewExample())
//	res, err := g.Generate("/tmp/fixtures")
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	return fixture.NewGenerator(cfg, logger)
}

// Generate writes the default fixture under outputDir/test_model.
func Generate(outputDir string) error {
	return fixture.Generate(outputDir)
}

// Load reads the fixture in modelDir and checks the two files agree.
func Load(modelDir string) (*Fixture, error) {
	return fixture.Load(modelDir)
}
