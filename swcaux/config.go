package swcaux

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask/render"
	"github.com/yzx9/swc2mask/v3dpbd"
	"gopkg.in/yaml.v3"
)

// Scene generation modes.
const (
	ModeSolidColor = "solid_color"
	ModeSolidUnion = "solid_union"
	ModePathDecay  = "path_decay"
)

// Image formats for directory output.
const (
	FormatTIFF = "tif"
	FormatPNG  = "png"
)

// Config is the full configuration of a render run. Vector valued fields are
// comma separated strings as accepted by [ParseVec3] and [ParseRange].
type Config struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Mode   string `yaml:"mode"`
	MSAA   int    `yaml:"msaa"`
	// Resolution is the voxel size "x,y,z".
	Resolution string `yaml:"resolution,omitempty"`
	// Range is "minx,miny,minz,maxx,maxy,maxz".
	Range string `yaml:"range,omitempty"`
	// Align is a .v3dpbd file whose volume size sets the range. Takes precedence over Range.
	Align       string   `yaml:"align,omitempty"`
	Threads     int      `yaml:"threads,omitempty"`
	Decay       float32  `yaml:"decay,omitempty"`
	Node        *int     `yaml:"node,omitempty"`
	ResetRadius *float32 `yaml:"reset_radius,omitempty"`
	// Background is the "r,g,b" color outside the skeleton, components in [0,1].
	Background string `yaml:"background,omitempty"`
	Format     string `yaml:"format,omitempty"`
	Silent     bool   `yaml:"silent,omitempty"`
}

// DefaultConfig returns a configuration with every optional field at its default.
func DefaultConfig() Config {
	return Config{
		Mode:   ModeSolidColor,
		MSAA:   int(render.MSAA1),
		Format: FormatTIFF,
	}
}

// LoadConfig reads a YAML configuration file. Fields absent from the file keep
// the values of [DefaultConfig].
func LoadConfig(name string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(name)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", name, err)
	}
	return cfg, nil
}

// Validate checks the configuration without touching input files.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.Input == "" {
		errs = append(errs, errors.New("missing input file"))
	}
	if cfg.Output == "" {
		errs = append(errs, errors.New("missing output path"))
	}
	switch cfg.Mode {
	case ModeSolidColor, ModeSolidUnion:
	case ModePathDecay:
		if cfg.Decay <= 0 {
			errs = append(errs, errors.New("path_decay mode requires a positive decay distance"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid mode %q", cfg.Mode))
	}
	if err := render.MSAA(cfg.MSAA).Validate(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Threads < 0 {
		errs = append(errs, fmt.Errorf("negative thread count %d", cfg.Threads))
	}
	if cfg.Format != FormatTIFF && cfg.Format != FormatPNG {
		errs = append(errs, fmt.Errorf("invalid image format %q", cfg.Format))
	}
	if cfg.Align != "" && !isV3DPBD(cfg.Align) {
		errs = append(errs, fmt.Errorf("unsupported align file %q", cfg.Align))
	}
	if cfg.Resolution != "" {
		if _, err := parseResolution(cfg.Resolution); err != nil {
			errs = append(errs, fmt.Errorf("resolution: %w", err))
		}
	}
	if cfg.Range != "" {
		if _, err := ParseRange(cfg.Range); err != nil {
			errs = append(errs, fmt.Errorf("range: %w", err))
		}
	}
	if cfg.Background != "" {
		if _, err := ParseVec3(cfg.Background); err != nil {
			errs = append(errs, fmt.Errorf("background: %w", err))
		}
	}
	return errors.Join(errs...)
}

// RenderConfig converts cfg into renderer settings, reading the align file if set.
func (cfg Config) RenderConfig() (render.Config, error) {
	rc := render.Config{
		MSAA:    render.MSAA(cfg.MSAA),
		Workers: cfg.Threads,
	}
	var err error
	if cfg.Resolution != "" {
		rc.Resolution, err = parseResolution(cfg.Resolution)
		if err != nil {
			return rc, fmt.Errorf("resolution: %w", err)
		}
	}
	switch {
	case cfg.Align != "":
		bb, err := AlignRange(cfg.Align)
		if err != nil {
			return rc, err
		}
		rc.Range = &bb
	case cfg.Range != "":
		bb, err := ParseRange(cfg.Range)
		if err != nil {
			return rc, err
		}
		rc.Range = &bb
	}
	return rc, nil
}

// AlignRange returns the range spanned by the volume described in a .v3dpbd file.
func AlignRange(name string) (ms3.Box, error) {
	if !isV3DPBD(name) {
		return ms3.Box{}, fmt.Errorf("unsupported align file %q", name)
	}
	h, err := v3dpbd.ReadFile(name)
	if err != nil {
		return ms3.Box{}, err
	}
	return h.Range(), nil
}

func isV3DPBD(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".v3dpbd")
}

// parseResolution is [ParseVec3] restricted to positive components.
func parseResolution(s string) (ms3.Vec, error) {
	v, err := ParseVec3(s)
	if err != nil {
		return v, err
	}
	if !(v.X > 0 && v.Y > 0 && v.Z > 0) {
		return v, fmt.Errorf("components must be positive, got %q", s)
	}
	return v, nil
}

// ParseVec3 parses three comma separated numbers.
func ParseVec3(s string) (ms3.Vec, error) {
	f, err := parseFloats(s, 3)
	if err != nil {
		return ms3.Vec{}, err
	}
	return ms3.Vec{X: f[0], Y: f[1], Z: f[2]}, nil
}

// ParseRange parses six comma separated numbers as a box's minimum then maximum.
func ParseRange(s string) (ms3.Box, error) {
	f, err := parseFloats(s, 6)
	if err != nil {
		return ms3.Box{}, err
	}
	return ms3.Box{
		Min: ms3.Vec{X: f[0], Y: f[1], Z: f[2]},
		Max: ms3.Vec{X: f[3], Y: f[4], Z: f[5]},
	}, nil
}

func parseFloats(s string, n int) ([]float32, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d comma separated values, got %d in %q", n, len(fields), s)
	}
	out := make([]float32, n)
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
