package nn

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/born-ml/modelfixture/internal/tensor"
)

// NewRand returns a random source for parameter initialization.
//
// A zero seed produces a time-seeded source; any other seed is reproducible.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		//nolint:gosec // G115: nanosecond clock as seed, sign is irrelevant
		seed = uint64(time.Now().UnixNano())
	}
	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Uniform fills a new float32 tensor with values drawn from U(-bound, bound).
func Uniform(shape tensor.Shape, bound float64, rng *rand.Rand) (*tensor.RawTensor, error) {
	t, err := tensor.NewRaw(shape, tensor.Float32)
	if err != nil {
		return nil, err
	}

	data := t.AsFloat32()
	for i := range data {
		data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
	}

	return t, nil
}

// FanInUniform initializes a tensor the way common frameworks initialize
// linear layers by default.
//
// Values are drawn from U(-1/sqrt(fan_in), 1/sqrt(fan_in)). The same bound is
// used for both weight and bias.
func FanInUniform(fanIn int, shape tensor.Shape, rng *rand.Rand) (*tensor.RawTensor, error) {
	return Uniform(shape, 1.0/math.Sqrt(float64(fanIn)), rng)
}
