package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/born-ml/modelfixture/internal/nn"
	"github.com/born-ml/modelfixture/internal/serialization"
)

// Fixture is a generated fixture read back from disk.
type Fixture struct {
	Metadata *Metadata
	Model    *nn.Linear
	Header   serialization.Header
	Tensors  []string // parameter names in file order
}

// Load reads the fixture in modelDir using the default file names.
func Load(modelDir string) (*Fixture, error) {
	cfg := DefaultConfig()
	return LoadFiles(filepath.Join(modelDir, cfg.ParamsFile), filepath.Join(modelDir, cfg.MetadataFile))
}

// LoadFiles reads a metadata sidecar and its parameter file, rebuilds the
// model from the declared shapes and checks that both files agree.
func LoadFiles(paramsPath, metadataPath string) (*Fixture, error) {
	meta, err := ReadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	in, out, err := meta.Features()
	if err != nil {
		return nil, err
	}
	// Initial values are replaced by the parameter file; the seed only skips time seeding.
	model, err := nn.NewLinear(in, out, nn.NewRand(1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	if err := meta.CheckModel(model); err != nil {
		return nil, err
	}

	header, tensors, err := readParams(paramsPath, model)
	if err != nil {
		return nil, err
	}

	if id, ok := header.Metadata[HeaderModelID]; ok && id != meta.ID {
		return nil, fmt.Errorf("%w: %s holds %q, metadata declares %q", ErrModelIDMismatch, paramsPath, id, meta.ID)
	}

	return &Fixture{
		Metadata: meta,
		Model:    model,
		Header:   header,
		Tensors:  tensors,
	}, nil
}

// ReadMetadata decodes a metadata sidecar.
func ReadMetadata(path string) (*Metadata, error) {
	//nolint:gosec // G304: path is supplied by the caller on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FilesystemError{Op: "read", Path: path, Err: err}
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, &SerializationError{Op: "decode", What: "metadata", Err: err}
	}
	return &meta, nil
}

// readParams loads the parameter file at path into model.
func readParams(path string, model nn.Module) (serialization.Header, []string, error) {
	reader, err := serialization.NewReader(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return serialization.Header{}, nil, &FilesystemError{Op: "read", Path: path, Err: err}
		}
		return serialization.Header{}, nil, &SerializationError{Op: "decode", What: "parameters", Err: err}
	}
	defer reader.Close()

	stateDict, err := reader.ReadStateDict()
	if err != nil {
		return serialization.Header{}, nil, &SerializationError{Op: "decode", What: "parameters", Err: err}
	}

	if err := model.LoadStateDict(stateDict); err != nil {
		return serialization.Header{}, nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}

	return reader.Header(), reader.TensorNames(), nil
}
