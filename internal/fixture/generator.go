// Package fixture generates and loads model-registry test fixtures.
//
// A fixture is a directory <output_dir>/<model_id> holding a parameter file
// and a JSON metadata sidecar describing the model's shapes and version.
package fixture

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/born-ml/modelfixture/internal/nn"
	"github.com/born-ml/modelfixture/internal/serialization"
)

// Header metadata keys written into the parameter file.
const (
	HeaderModelID = "model_id"
	HeaderRunID   = "run_id"
)

// paramsModelType is the model type recorded in the parameter file header.
const paramsModelType = "Linear"

// Generator writes fixtures for one Config.
type Generator struct {
	cfg    Config
	logger *zap.Logger
}

// Result describes the files written by a single Generate call.
type Result struct {
	Dir          string
	ParamsPath   string
	MetadataPath string
	RunID        string
	Metadata     *Metadata
}

// NewGenerator validates cfg and returns a Generator. A nil logger discards logs.
func NewGenerator(cfg Config, logger *zap.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Generate writes the default fixture under outputDir.
func Generate(outputDir string) error {
	g, err := NewGenerator(DefaultConfig(), nil)
	if err != nil {
		return err
	}
	_, err = g.Generate(outputDir)
	return err
}

// Generate builds a fresh model and writes its parameter file and metadata
// sidecar to outputDir/<ModelID>, creating directories as needed.
//
// Existing files are overwritten. Errors are *FilesystemError,
// *SerializationError or wrap ErrShapeMismatch.
func (g *Generator) Generate(outputDir string) (*Result, error) {
	model, err := nn.NewLinear(g.cfg.InFeatures, g.cfg.OutFeatures, nn.NewRand(g.cfg.Seed))
	if err != nil {
		return nil, err
	}
	g.logger.Debug("built model",
		zap.Int("in_features", model.InFeatures()),
		zap.Int("out_features", model.OutFeatures()),
		zap.Float32s("weight", model.Weight()),
		zap.Float32s("bias", model.Bias()))

	metadata := NewMetadata(g.cfg, model)
	if err := metadata.CheckModel(model); err != nil {
		return nil, err
	}

	dir := filepath.Join(outputDir, g.cfg.ModelID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &FilesystemError{Op: "mkdir", Path: dir, Err: err}
	}

	res := &Result{
		Dir:          dir,
		ParamsPath:   filepath.Join(dir, g.cfg.ParamsFile),
		MetadataPath: filepath.Join(dir, g.cfg.MetadataFile),
		RunID:        uuid.New().String(),
		Metadata:     metadata,
	}

	if err := g.writeParams(res, model); err != nil {
		return nil, err
	}
	if err := g.writeMetadata(res); err != nil {
		return nil, err
	}

	g.logger.Info("generated fixture",
		zap.String("model_id", g.cfg.ModelID),
		zap.String("dir", dir),
		zap.String("run_id", res.RunID))
	return res, nil
}

func (g *Generator) writeParams(res *Result, model *nn.Linear) (err error) {
	header := serialization.Header{
		ModelType: paramsModelType,
		Metadata: map[string]string{
			HeaderModelID: g.cfg.ModelID,
			HeaderRunID:   res.RunID,
		},
	}

	w, err := serialization.NewWriter(res.ParamsPath)
	if err != nil {
		return &FilesystemError{Op: "create", Path: res.ParamsPath, Err: err}
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = &FilesystemError{Op: "close", Path: res.ParamsPath, Err: cerr}
		}
	}()

	stateDict := model.StateDict()
	if err := w.WriteStateDict(stateDict, header); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return &FilesystemError{Op: "write", Path: res.ParamsPath, Err: err}
		}
		return &SerializationError{Op: "encode", What: "parameters", Err: err}
	}

	g.logger.Info("wrote parameters", zap.String("path", res.ParamsPath), zap.Int("tensors", len(stateDict)))
	return nil
}

func (g *Generator) writeMetadata(res *Result) error {
	data, err := res.Metadata.MarshalIndent()
	if err != nil {
		return &SerializationError{Op: "encode", What: "metadata", Err: err}
	}

	if err := writeFile(res.MetadataPath, data); err != nil {
		return err
	}

	g.logger.Info("wrote metadata", zap.String("path", res.MetadataPath), zap.Int("bytes", len(data)))
	return nil
}

// writeFile replaces path with data in a single write.
func writeFile(path string, data []byte) error {
	//nolint:gosec // G306: fixtures are meant to be readable by other tools
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &FilesystemError{Op: "write", Path: path, Err: err}
	}
	return nil
}
