// smoltool inspects, converts and serves molecular structure files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Faultbox/smolview/internal/config"
	"github.com/Faultbox/smolview/internal/loader"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/pipeline"
	"github.com/Faultbox/smolview/pkg/formats"
)

// app carries the settings shared by every command.
type app struct {
	configPath string
	debug      bool
	format     string
	timeout    time.Duration
	cylinders  bool

	cfg *config.Config
	in  io.Reader
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "smoltool",
		Short: "Inspect, convert, export and serve molecular structures",
		Long: `smoltool works on XYZ, CML and smol JSON structure files.

Inputs are file paths, http(s) URLs or "-" for stdin. The format is
taken from the extension unless --format is given; stdin needs it.

Examples:
  smoltool info water.xyz
  smoltool project https://example.org/si.smol
  smoltool convert water.xyz water.smol --pos-scale 1.5
  smoltool export benzene.cml benzene.glb --cylinders
  smoltool serve si.smol --addr :8080
  smoltool config init
  smoltool elements si o`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to config file")
	pf.BoolVar(&a.debug, "debug", false, "Enable debug logging")
	pf.StringVar(&a.format, "format", "", "Input format, overriding the extension (xyz, cml, smol)")
	pf.DurationVar(&a.timeout, "timeout", 0, "Timeout for loading the input (0 uses the config value)")
	pf.BoolVar(&a.cylinders, "cylinders", false, "Draw bonds as cylinders")

	root.AddCommand(
		newInfoCmd(a),
		newProjectCmd(a),
		newConvertCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
		newElementsCmd(),
	)
	return root
}

// setup loads the config and starts logging before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(&config.Flags{
		Config:    a.configPath,
		Debug:     a.debug,
		Format:    a.format,
		Cylinders: a.cylinders,
	})
	if err != nil {
		return err
	}
	if a.timeout > 0 {
		cfg.Input.Timeout = a.timeout
	}
	a.cfg = cfg
	a.in = cmd.InOrStdin()

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	return nil
}

// source turns a command argument into a loader source.
func (a *app) source(arg string) (loader.Source, error) {
	in := a.cfg.Input
	in.Path, in.URL = "", ""
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		in.URL = arg
	} else {
		in.Path = arg
	}
	return loader.FromConfig(in)
}

// stdin reads a structure piped to the command.
func (a *app) stdin() (formats.Kind, []byte, error) {
	if a.cfg.Input.Format == "" {
		return formats.KindUnknown, nil, errors.New("reading stdin needs --format")
	}
	kind, err := formats.ParseKind(a.cfg.Input.Format)
	if err != nil {
		return formats.KindUnknown, nil, err
	}
	data, err := io.ReadAll(a.in)
	if err != nil {
		return formats.KindUnknown, nil, fmt.Errorf("reading stdin: %w", err)
	}
	return kind, data, nil
}

// load runs the full pipeline on arg.
func (a *app) load(ctx context.Context, arg string) (*pipeline.Context, error) {
	if arg == "-" {
		kind, data, err := a.stdin()
		if err != nil {
			return nil, err
		}
		return pipeline.FromData(kind, data, pipeline.OptionsFromConfig(a.cfg))
	}
	src, err := a.source(arg)
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx, loader.New(nil), src, pipeline.OptionsFromConfig(a.cfg))
}

// read fetches arg and parses it without transforming.
func (a *app) read(ctx context.Context, arg string) (*loader.Result, error) {
	if arg == "-" {
		kind, data, err := a.stdin()
		if err != nil {
			return nil, err
		}
		return &loader.Result{Kind: kind, Data: data}, nil
	}
	src, err := a.source(arg)
	if err != nil {
		return nil, err
	}
	if a.cfg.Input.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Input.Timeout)
		defer cancel()
	}
	res := loader.New(nil).Load(ctx, src)
	if res.Err != nil {
		return nil, res.Err
	}
	return &res, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
