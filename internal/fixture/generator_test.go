package fixture

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/born-ml/modelfixture/internal/serialization"
)

func TestGenerate_WritesBothFiles(t *testing.T) {
	outputDir := t.TempDir()

	require.NoError(t, Generate(outputDir))

	modelDir := filepath.Join(outputDir, "test_model")
	entries, err := os.ReadDir(modelDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, name := range []string{"model.pt", "metadata.json"} {
		info, err := os.Stat(filepath.Join(modelDir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), "%s should not be empty", name)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	outputDir := t.TempDir()

	require.NoError(t, Generate(outputDir))
	require.NoError(t, Generate(outputDir), "second run must not fail on existing directory")

	entries, err := os.ReadDir(filepath.Join(outputDir, "test_model"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestGenerate_CreatesMissingParents(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, Generate(outputDir))
	assert.FileExists(t, filepath.Join(outputDir, "test_model", "metadata.json"))
}

func TestGenerate_MetadataContents(t *testing.T) {
	outputDir := t.TempDir()
	require.NoError(t, Generate(outputDir))

	data, err := os.ReadFile(filepath.Join(outputDir, "test_model", "metadata.json"))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "test_model", raw["id"])
	assert.Equal(t, "1.0.0", raw["version"])
	assert.Equal(t, "linear-regressor", raw["model_type"])
	assert.Equal(t, []any{float64(1), float64(3)}, raw["input_shape"])
	assert.Equal(t, []any{float64(1), float64(1)}, raw["output_shape"])
	assert.Equal(t, "Simple test model for Solana Oasis", raw["description"])
	assert.Equal(t, map[string]any{}, raw["parameters"])
	assert.Len(t, raw, 7)

	// 2-space indentation, trailing newline
	assert.Contains(t, string(data), "\n  \"id\": \"test_model\",\n")
	assert.Equal(t, byte('\n'), data[len(data)-1])
}

func TestGenerate_RoundTrip(t *testing.T) {
	outputDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Seed = 99

	g, err := NewGenerator(cfg, nil)
	require.NoError(t, err)
	res, err := g.Generate(outputDir)
	require.NoError(t, err)

	fx, err := Load(res.Dir)
	require.NoError(t, err)

	assert.Len(t, fx.Model.Weight(), 3)
	assert.Len(t, fx.Model.Bias(), 1)
	assert.Equal(t, res.Metadata, fx.Metadata)
	assert.Equal(t, "test_model", fx.Header.Metadata[HeaderModelID])
	assert.Equal(t, res.RunID, fx.Header.Metadata[HeaderRunID])
	assert.Equal(t, "Linear", fx.Header.ModelType)
	assert.Equal(t, []string{"bias", "weight"}, fx.Tensors)

	// Same seed, same parameters.
	again, err := g.Generate(t.TempDir())
	require.NoError(t, err)
	fx2, err := Load(again.Dir)
	require.NoError(t, err)
	assert.Equal(t, fx.Model.Weight(), fx2.Model.Weight())
	assert.NotEqual(t, res.RunID, again.RunID)

	input := []float32{1, -2, 0.5}
	y1, err := fx.Model.Forward(input)
	require.NoError(t, err)
	y2, err := fx2.Model.Forward(input)
	require.NoError(t, err)
	assert.Equal(t, y1, y2)
}

func TestGenerate_CustomConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelID = "wide_model"
	cfg.InFeatures = 5
	cfg.OutFeatures = 2
	cfg.ParamsFile = "weights.bin"

	g, err := NewGenerator(cfg, nil)
	require.NoError(t, err)
	res, err := g.Generate(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 5}, res.Metadata.InputShape)
	assert.Equal(t, []int{1, 2}, res.Metadata.OutputShape)
	assert.Equal(t, "weights.bin", filepath.Base(res.ParamsPath))

	fx, err := LoadFiles(res.ParamsPath, res.MetadataPath)
	require.NoError(t, err)
	assert.Equal(t, 5, fx.Model.InFeatures())
	assert.Equal(t, 2, fx.Model.OutFeatures())
}

func TestGenerate_Logs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	g, err := NewGenerator(DefaultConfig(), zap.New(core))
	require.NoError(t, err)
	res, err := g.Generate(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("built model").Len())
	assert.Equal(t, 1, logs.FilterMessage("wrote parameters").Len())
	assert.Equal(t, 1, logs.FilterMessage("wrote metadata").Len())

	done := logs.FilterMessage("generated fixture").All()
	require.Len(t, done, 1)
	assert.Equal(t, res.RunID, done[0].ContextMap()["run_id"])
}

func TestGenerate_FilesystemError(t *testing.T) {
	// A regular file where the output directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := Generate(blocker)
	require.Error(t, err)

	var fsErr *FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "mkdir", fsErr.Op)
}

func TestGenerate_ReadOnlyDir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	outputDir := t.TempDir()
	modelDir := filepath.Join(outputDir, "test_model")
	require.NoError(t, os.MkdirAll(modelDir, 0o755))
	require.NoError(t, os.Chmod(modelDir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(modelDir, 0o755) })

	err := Generate(outputDir)

	var fsErr *FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, "create", fsErr.Op)
	assert.Equal(t, filepath.Join(modelDir, "model.pt"), fsErr.Path)
	assert.NoFileExists(t, filepath.Join(modelDir, "metadata.json"))
}

func TestGenerate_InvalidModelWritesNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InFeatures = 0

	// Bypasses NewGenerator so the failure happens inside Generate.
	g := &Generator{cfg: cfg, logger: zap.NewNop()}
	outputDir := t.TempDir()

	_, err := g.Generate(outputDir)
	require.Error(t, err)

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewGenerator_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty id", func(c *Config) { c.ModelID = "" }},
		{"id with separator", func(c *Config) { c.ModelID = "../escape" }},
		{"dot dot id", func(c *Config) { c.ModelID = ".." }},
		{"empty version", func(c *Config) { c.Version = "" }},
		{"empty model type", func(c *Config) { c.ModelType = "" }},
		{"zero inputs", func(c *Config) { c.InFeatures = 0 }},
		{"negative outputs", func(c *Config) { c.OutFeatures = -1 }},
		{"nested params file", func(c *Config) { c.ParamsFile = "sub/model.pt" }},
		{"same file names", func(c *Config) { c.MetadataFile = c.ParamsFile }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			_, err := NewGenerator(cfg, nil)
			assert.Error(t, err)
		})
	}

	require.NoError(t, DefaultConfig().Validate())
}

func TestLoad_CorruptedParams(t *testing.T) {
	outputDir := t.TempDir()
	require.NoError(t, Generate(outputDir))

	paramsPath := filepath.Join(outputDir, "test_model", "model.pt")
	data, err := os.ReadFile(paramsPath)
	require.NoError(t, err)
	data[len(data)-1] ^= 0x01
	require.NoError(t, os.WriteFile(paramsPath, data, 0o600))

	_, err = Load(filepath.Join(outputDir, "test_model"))
	require.ErrorIs(t, err, serialization.ErrChecksumMismatch)

	var serErr *SerializationError
	assert.ErrorAs(t, err, &serErr)
}

func TestLoad_ShapeMismatch(t *testing.T) {
	outputDir := t.TempDir()
	require.NoError(t, Generate(outputDir))
	modelDir := filepath.Join(outputDir, "test_model")

	meta, err := ReadMetadata(filepath.Join(modelDir, "metadata.json"))
	require.NoError(t, err)
	meta.InputShape = []int{1, 4}
	data, err := meta.MarshalIndent()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "metadata.json"), data, 0o600))

	_, err = Load(modelDir)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	meta.InputShape = []int{3}
	data, err = meta.MarshalIndent()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "metadata.json"), data, 0o600))

	_, err = Load(modelDir)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLoad_ModelIDMismatch(t *testing.T) {
	outputDir := t.TempDir()
	require.NoError(t, Generate(outputDir))
	modelDir := filepath.Join(outputDir, "test_model")

	meta, err := ReadMetadata(filepath.Join(modelDir, "metadata.json"))
	require.NoError(t, err)
	meta.ID = "other_model"
	data, err := meta.MarshalIndent()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(modelDir, "metadata.json"), data, 0o600))

	_, err = Load(modelDir)
	assert.ErrorIs(t, err, ErrModelIDMismatch)
}

func TestLoad_MissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	var fsErr *FilesystemError
	require.ErrorAs(t, err, &fsErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// Metadata present, parameters missing.
	meta := &Metadata{ID: "test_model", InputShape: []int{1, 3}, OutputShape: []int{1, 1}}
	data, err := meta.MarshalIndent()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o600))

	_, err = Load(dir)
	require.ErrorAs(t, err, &fsErr)
	assert.Equal(t, filepath.Join(dir, "model.pt"), fsErr.Path)
}

func TestLoad_InvalidMetadataJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), []byte("{not json"), 0o600))

	_, err := Load(dir)
	var serErr *SerializationError
	require.ErrorAs(t, err, &serErr)
	assert.Equal(t, "metadata", serErr.What)
	assert.Equal(t, "decode", serErr.Op)
}

// writeRawParams writes a parameter file with an arbitrary header and a valid
// checksum over data.
func writeRawParams(t *testing.T, path string, header serialization.Header, data []byte) {
	t.Helper()

	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)

	out := make([]byte, serialization.FixedHeaderSize)
	copy(out, serialization.MagicBytes)
	binary.LittleEndian.PutUint32(out[4:8], serialization.FormatVersion)
	binary.LittleEndian.PutUint64(out[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(out[24:32], uint64(len(data)))
	checksum := serialization.ComputeChecksum(data)
	copy(out[serialization.ChecksumOffset:], checksum[:])

	out = append(out, headerJSON...)
	for len(out)%serialization.HeaderAlignment != 0 {
		out = append(out, 0)
	}
	out = append(out, data...)

	require.NoError(t, os.WriteFile(path, out, 0o600))
}

func TestLoad_OversizedTensorHeader(t *testing.T) {
	dir := t.TempDir()

	meta := &Metadata{ID: "test_model", InputShape: []int{1, 3}, OutputShape: []int{1, 1}}
	data, err := meta.MarshalIndent()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o600))

	// 2^60 float32 elements is exactly 2^62 bytes, and 2^62 + 2^62 wraps negative.
	writeRawParams(t, filepath.Join(dir, "model.pt"), serialization.Header{
		FormatVersion: serialization.FormatVersion,
		ModelType:     "Linear",
		Tensors: []serialization.TensorMeta{
			{Name: "bias", DType: "float32", Shape: []int{1 << 60}, Offset: 1 << 62, Size: 1 << 62},
			{Name: "weight", DType: "float32", Shape: []int{1, 3}, Offset: 0, Size: 12},
		},
	}, make([]byte, 16))

	var fx *Fixture
	require.NotPanics(t, func() { fx, err = Load(dir) })
	assert.Nil(t, fx)

	var serErr *SerializationError
	require.ErrorAs(t, err, &serErr)
	assert.Equal(t, "parameters", serErr.What)

	var validationErr *serialization.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "out_of_bounds", validationErr.Type)
}
