package config

import "flag"

// Flags holds command-line overrides. Zero values leave the setting alone.
type Flags struct {
	Config     string
	Debug      bool
	Input      string
	URL        string
	Format     string
	Width      int
	Height     int
	Fullscreen bool
	Cylinders  bool
}

// RegisterFlags binds the viewer flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Input, "input", "", "Structure file to open (.xyz, .cml, .smol)")
	fs.StringVar(&f.URL, "url", "", "Structure file to fetch over HTTP")
	fs.StringVar(&f.Format, "format", "", "Input format, overriding the file extension (xyz, cml, smol)")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.BoolVar(&f.Cylinders, "cylinders", false, "Draw bonds as cylinders")
	return f
}

// apply copies the set flags onto cfg.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Input != "" {
		cfg.Input.Path = f.Input
		cfg.Input.URL = ""
	}
	if f.URL != "" {
		cfg.Input.URL = f.URL
		cfg.Input.Path = ""
	}
	if f.Format != "" {
		cfg.Input.Format = f.Format
	}
	if f.Width > 0 {
		cfg.Window.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Window.Height = f.Height
	}
	if f.Fullscreen {
		cfg.Window.Fullscreen = true
	}
	if f.Cylinders {
		cfg.Render.BondStyle = BondCylinder
	}
}
