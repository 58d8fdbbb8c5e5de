package fixture

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/born-ml/modelfixture/internal/nn"
)

// Metadata is the JSON sidecar written next to the parameter file.
type Metadata struct {
	ID          string            `json:"id"`
	Version     string            `json:"version"`
	ModelType   string            `json:"model_type"`
	InputShape  []int             `json:"input_shape"`
	OutputShape []int             `json:"output_shape"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
}

// NewMetadata builds the sidecar for model, taking shapes from the model itself.
func NewMetadata(cfg Config, model *nn.Linear) *Metadata {
	return &Metadata{
		ID:          cfg.ModelID,
		Version:     cfg.Version,
		ModelType:   cfg.ModelType,
		InputShape:  []int{1, model.InFeatures()},
		OutputShape: []int{1, model.OutFeatures()},
		Description: cfg.Description,
		Parameters:  map[string]string{},
	}
}

// CheckModel returns ErrShapeMismatch if the declared shapes do not describe model.
func (m *Metadata) CheckModel(model *nn.Linear) error {
	wantIn := []int{1, model.InFeatures()}
	wantOut := []int{1, model.OutFeatures()}

	if !slices.Equal(m.InputShape, wantIn) {
		return fmt.Errorf("%w: input_shape %v, model expects %v", ErrShapeMismatch, m.InputShape, wantIn)
	}
	if !slices.Equal(m.OutputShape, wantOut) {
		return fmt.Errorf("%w: output_shape %v, model produces %v", ErrShapeMismatch, m.OutputShape, wantOut)
	}
	return nil
}

// Features returns the model dimensions declared by the shapes.
func (m *Metadata) Features() (in, out int, err error) {
	if len(m.InputShape) != 2 || len(m.OutputShape) != 2 {
		return 0, 0, fmt.Errorf("%w: expected rank-2 shapes, got input_shape %v output_shape %v",
			ErrShapeMismatch, m.InputShape, m.OutputShape)
	}
	return m.InputShape[1], m.OutputShape[1], nil
}

// MarshalIndent encodes the metadata as 2-space indented JSON with a trailing newline.
func (m *Metadata) MarshalIndent() ([]byte, error) {
	out := *m
	if out.Parameters == nil {
		out.Parameters = map[string]string{}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
