// Package nn implements the model layers that fixtures are built from.
//
// Layers are plain values: they own their parameters as RawTensors and can
// export them as a state dictionary or restore them from one. There is no
// training machinery here.
package nn

import (
	"github.com/born-ml/modelfixture/internal/tensor"
)

// Module is the interface implemented by layers whose parameters can be
// saved to and restored from a state dictionary.
type Module interface {
	// StateDict returns a map of parameter names to raw tensors.
	//
	// The returned tensors share memory with the module.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict copies parameters from a state dictionary into the module.
	//
	// Implementations validate names, shapes and dtypes before copying.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
