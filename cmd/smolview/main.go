// Package main is the entry point for the smolview native viewer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/config"
	"github.com/Faultbox/smolview/internal/loader"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/pipeline"
	"github.com/Faultbox/smolview/internal/viewer"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: smolview [flags] [file]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 0 && flags.Input == "" && flags.URL == "" {
		flags.Input = flag.Arg(0)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== smolview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Input.Path == "" && cfg.Input.URL == "" {
		path, err := chooseFile()
		if err != nil {
			logger.Error("no input selected", zap.Error(err))
			os.Exit(1)
		}
		cfg.Input.Path = path
	}

	src, err := loader.FromConfig(cfg.Input)
	if err != nil {
		logger.Error("invalid input", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pc, err := pipeline.Run(ctx, loader.New(nil), src, pipeline.OptionsFromConfig(cfg))
	if err != nil {
		logger.Error("failed to load structure", zap.String("source", src.Name()), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("structure ready",
		zap.String("formula", pc.Molecule.Formula()),
		zap.Duration("took", pc.Total()),
	)

	v, err := viewer.New(cfg, pc)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(ctx); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

// chooseFile asks for a structure file. It runs before the window exists,
// on the main thread, as native dialogs require.
func chooseFile() (string, error) {
	path, err := dialog.File().
		Filter("Structures", "xyz", "cml", "xml", "smol", "json").
		Filter("All Files", "*").
		Title("Open Structure").
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", loader.ErrNoSource
	}
	return path, err
}
