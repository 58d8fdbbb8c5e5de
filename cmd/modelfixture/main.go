// Package main provides the modelfixture CLI.
//
// Usage:
//
//	modelfixture [flags] [--] <output_dir>
//
// Writes <output_dir>/test_model/model.pt and <output_dir>/test_model/metadata.json.
// Use -- before an output_dir that begins with a dash.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/born-ml/modelfixture/internal/fixture"
)

const usage = "Usage: modelfixture [flags] [--] <output_dir>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("modelfixture", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		fmt.Fprintf(stdout, "%s\n\nFlags:\n", usage)
		fs.PrintDefaults()
	}

	verify := fs.Bool("verify", false, "reload the written fixture and check it")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	seed := fs.Uint64("seed", 0, "parameter initialization seed (0 = random)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stdout, usage)
		return 1
	}
	outputDir := fs.Arg(0)

	logger, err := newLogger(*logLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg := fixture.DefaultConfig()
	cfg.Seed = *seed

	g, err := fixture.NewGenerator(cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 1
	}

	res, err := g.Generate(outputDir)
	if err != nil {
		logger.Error("failed to generate fixture", zap.String("output_dir", outputDir), zap.Error(err))
		return 1
	}

	if *verify {
		fx, err := fixture.LoadFiles(res.ParamsPath, res.MetadataPath)
		if err != nil {
			logger.Error("fixture verification failed", zap.String("dir", res.Dir), zap.Error(err))
			return 1
		}
		logger.Info("verified fixture", zap.String("dir", res.Dir), zap.Strings("tensors", fx.Tensors))
	}

	return 0
}

// newLogger builds a console logger on w at the named level.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)

	return zap.New(core), nil
}
