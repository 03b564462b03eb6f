// Package pipeline runs a structure from its source to a drawable scene:
// load, parse, validate, transform, build. The resulting Context is the
// single owner of the molecule and is handed to the viewer, the exporter
// and the web server.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/smolview/internal/config"
	"github.com/Faultbox/smolview/internal/loader"
	"github.com/Faultbox/smolview/internal/logger"
	"github.com/Faultbox/smolview/internal/scene"
	"github.com/Faultbox/smolview/pkg/formats"
	"github.com/Faultbox/smolview/pkg/molecule"
	"github.com/Faultbox/smolview/pkg/transform"
)

// Stage names, in execution order.
const (
	StageLoad      = "load"
	StageParse     = "parse"
	StageValidate  = "validate"
	StageTransform = "transform"
	StageBuild     = "build"
)

// Options configure the transform and the scene builder.
type Options struct {
	Transform transform.Options
	Scene     scene.Options
	Timeout   time.Duration
}

// DefaultOptions matches config.Default.
func DefaultOptions() Options {
	return Options{
		Transform: transform.DefaultOptions(),
		Scene:     scene.DefaultOptions(),
	}
}

// OptionsFromConfig maps the render and input settings.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	opts.Transform.Offset = cfg.Render.Offset
	opts.Scene.BondStyle = scene.BondStyle(cfg.Render.BondStyle)
	opts.Scene.RadiusMode = scene.RadiusMode(cfg.Render.AtomRadius)
	opts.Scene.FixedRadius = cfg.Render.FixedRadius
	opts.Scene.SphereSegments = cfg.Render.SphereSegments
	opts.Timeout = cfg.Input.Timeout
	return opts
}

// Timing is the duration of one stage.
type Timing struct {
	Stage string
	Took  time.Duration
}

// Context carries everything produced for one structure.
type Context struct {
	Source    loader.Source
	Kind      formats.Kind
	Molecule  *molecule.Molecule
	Transform *transform.Result
	Scene     *scene.Scene
	Timings   []Timing
}

// StageError records which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Run loads src and takes it through every stage. The fetch runs on
// its own goroutine; Run waits for it unless ctx ends first.
func Run(ctx context.Context, l *loader.Loader, src loader.Source, opts Options) (*Context, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	pc := &Context{Source: src}
	start := time.Now()

	var res loader.Result
	select {
	case res = <-l.Fetch(ctx, src):
	case <-ctx.Done():
		return nil, &StageError{Stage: StageLoad, Err: ctx.Err()}
	}
	if res.Err != nil {
		return nil, &StageError{Stage: StageLoad, Err: res.Err}
	}
	pc.mark(StageLoad, start, zap.String("source", src.Name()), zap.Int("bytes", len(res.Data)))

	if err := pc.parse(res.Kind, res.Data); err != nil {
		return nil, err
	}
	if err := pc.finish(opts); err != nil {
		return nil, err
	}
	return pc, nil
}

// FromData runs every stage after load on data already in memory.
func FromData(kind formats.Kind, data []byte, opts Options) (*Context, error) {
	pc := &Context{Source: loader.Source{Kind: kind, Inline: data}}
	if err := pc.parse(kind, data); err != nil {
		return nil, err
	}
	if err := pc.finish(opts); err != nil {
		return nil, err
	}
	return pc, nil
}

// FromMolecule validates, transforms and builds an in-memory molecule.
// m is modified in place.
func FromMolecule(m *molecule.Molecule, opts Options) (*Context, error) {
	pc := &Context{Molecule: m}
	if err := pc.finish(opts); err != nil {
		return nil, err
	}
	return pc, nil
}

func (pc *Context) parse(kind formats.Kind, data []byte) error {
	start := time.Now()
	m, err := formats.Parse(kind, data)
	if err != nil {
		return &StageError{Stage: StageParse, Err: err}
	}
	pc.Kind = kind
	pc.Molecule = m
	pc.mark(StageParse, start, zap.Stringer("kind", kind), zap.Int("atoms", len(m.Atoms)))
	return nil
}

func (pc *Context) finish(opts Options) error {
	m := pc.Molecule

	start := time.Now()
	if err := molecule.Validate(m); err != nil {
		return &StageError{Stage: StageValidate, Err: err}
	}
	pc.mark(StageValidate, start)

	start = time.Now()
	res, err := transform.Apply(m, opts.Transform)
	if err != nil {
		return &StageError{Stage: StageTransform, Err: err}
	}
	pc.Transform = res
	logger.Debug("bounding box",
		zap.Float64s("min", []float64{res.Min.X, res.Min.Y, res.Min.Z}),
		zap.Float64s("max", []float64{res.Max.X, res.Max.Y, res.Max.Z}))
	if logger.Level() == "debug" {
		for i := range m.Atoms {
			a := &m.Atoms[i]
			logger.Debug("atom",
				zap.Int("aix", a.Aix),
				zap.String("sym", a.Sym),
				zap.Float64s("cart", []float64{a.Cart.X, a.Cart.Y, a.Cart.Z}),
				zap.Float64s("proj", []float64{a.Proj.X, a.Proj.Y, a.Proj.Z}))
		}
	}
	pc.mark(StageTransform, start)

	start = time.Now()
	s, err := scene.Build(m, res, opts.Scene)
	if err != nil {
		return &StageError{Stage: StageBuild, Err: err}
	}
	pc.Scene = s
	counts := s.Counts()
	pc.mark(StageBuild, start,
		zap.Int("atoms", counts["atoms"]),
		zap.Int("bonds", counts["bonds"]),
		zap.Int("edges", counts["edges"]))
	return nil
}

func (pc *Context) mark(stage string, start time.Time, fields ...zap.Field) {
	pc.Timings = append(pc.Timings, Timing{Stage: stage, Took: time.Since(start)})
	logger.Since(stage, start, fields...)
}

// Total returns the summed stage durations.
func (pc *Context) Total() time.Duration {
	var d time.Duration
	for _, t := range pc.Timings {
		d += t.Took
	}
	return d
}

// Rebuild rebuilds the scene with new options, keeping the transform.
func (pc *Context) Rebuild(opts scene.Options) error {
	start := time.Now()
	s, err := scene.Build(pc.Molecule, pc.Transform, opts)
	if err != nil {
		return &StageError{Stage: StageBuild, Err: err}
	}
	pc.Scene = s
	pc.mark(StageBuild, start)
	return nil
}
