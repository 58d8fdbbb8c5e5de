package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/modelfixture/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = W @ x + b
// where:
//   - x is the input vector with in_features elements
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output vector with out_features elements
//
// Example:
//
//	layer, err := nn.NewLinear(3, 1, nn.NewRand(42))
//	y, err := layer.Forward([]float32{1, 2, 3})  // len(y) == 1
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *tensor.RawTensor // [out_features, in_features]
	bias        *tensor.RawTensor // [out_features]
}

// NewLinear creates a new Linear layer.
//
// Weight and bias are drawn from U(-1/sqrt(in), 1/sqrt(in)). A nil rng uses
// a time-seeded source.
func NewLinear(inFeatures, outFeatures int, rng *rand.Rand) (*Linear, error) {
	if inFeatures <= 0 || outFeatures <= 0 {
		return nil, fmt.Errorf("invalid linear dimensions: in=%d, out=%d", inFeatures, outFeatures)
	}
	if rng == nil {
		rng = NewRand(0)
	}

	weight, err := FanInUniform(inFeatures, tensor.Shape{outFeatures, inFeatures}, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to init weight: %w", err)
	}

	bias, err := FanInUniform(inFeatures, tensor.Shape{outFeatures}, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to init bias: %w", err)
	}

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
	}, nil
}

// Forward computes the output of the linear layer for a single input vector.
func (l *Linear) Forward(input []float32) ([]float32, error) {
	if len(input) != l.inFeatures {
		return nil, fmt.Errorf("linear forward: expected input with %d features, got %d", l.inFeatures, len(input))
	}

	w := l.weight.AsFloat32()
	b := l.bias.AsFloat32()

	output := make([]float32, l.outFeatures)
	for o := range output {
		sum := b[o]
		row := w[o*l.inFeatures : (o+1)*l.inFeatures]
		for i, x := range input {
			sum += row[i] * x
		}
		output[o] = sum
	}

	return output, nil
}

// Weight returns the weight values in row-major [out_features, in_features] order.
func (l *Linear) Weight() []float32 {
	return l.weight.AsFloat32()
}

// Bias returns the bias values.
func (l *Linear) Bias() []float32 {
	return l.bias.AsFloat32()
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.weight,
		"bias":   l.bias,
	}
}

// LoadStateDict loads parameters from a state dictionary.
//
// Both parameters are validated before either is copied, so a failed load
// leaves the layer unchanged.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	weight, err := lookupParam(l.weight, stateDict, "weight")
	if err != nil {
		return err
	}
	bias, err := lookupParam(l.bias, stateDict, "bias")
	if err != nil {
		return err
	}

	copy(l.weight.Data(), weight.Data())
	copy(l.bias.Data(), bias.Data())
	return nil
}

// lookupParam returns stateDict[name] after checking it against dst.
func lookupParam(dst *tensor.RawTensor, stateDict map[string]*tensor.RawTensor, name string) (*tensor.RawTensor, error) {
	raw, ok := stateDict[name]
	if !ok {
		return nil, fmt.Errorf("missing %s in state dict", name)
	}

	if !raw.Shape().Equal(dst.Shape()) {
		return nil, fmt.Errorf("%s shape mismatch: expected %v, got %v", name, dst.Shape(), raw.Shape())
	}

	if raw.DType() != tensor.Float32 {
		return nil, fmt.Errorf("%s dtype mismatch: expected float32, got %v", name, raw.DType())
	}

	return raw, nil
}
