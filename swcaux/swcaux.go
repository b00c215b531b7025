// Package swcaux wires skeleton loading, scene generation, rendering and
// output together for command line use.
package swcaux

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/soypat/geometry/ms3"
	"github.com/yzx9/swc2mask/log"
	"github.com/yzx9/swc2mask/morph"
	"github.com/yzx9/swc2mask/render"
	"github.com/yzx9/swc2mask/scene"
	"github.com/yzx9/swc2mask/swc"
)

var logger = log.New("swcaux")

var white = ms3.Vec{X: 1, Y: 1, Z: 1}

// Render reads the skeleton in cfg.Input and writes the rendered stack to cfg.Output.
// An output ending in a path separator is a directory of numbered images; any
// other output is a multi-page TIFF file.
func Render(cfg Config) (err error) {
	err = cfg.Validate()
	if err != nil {
		return err
	}
	notice := func(format string, args ...any) {
		if !cfg.Silent {
			logger.Noticef(format, args...)
		}
	}
	total := stopwatch()
	watch := stopwatch()
	tree, err := swc.ReadFile(cfg.Input)
	if err != nil {
		return err
	}
	if cfg.ResetRadius != nil {
		tree.SetRadius(*cfg.ResetRadius)
	}
	notice("read %s: %s in %s", cfg.Input, tree, watch())

	watch = stopwatch()
	sc, err := BuildScene(tree, cfg)
	if err != nil {
		return err
	}
	notice("built scene with %d objects in %s", sc.Len(), watch())

	rc, err := cfg.RenderConfig()
	if err != nil {
		return err
	}
	r, err := render.NewStackRenderer(sc, rc)
	if err != nil {
		return err
	}
	defer r.Close()

	watch = stopwatch()
	src := &progress{r: r, total: r.Len()}
	var n int
	if strings.HasSuffix(cfg.Output, "/") || strings.HasSuffix(cfg.Output, string(os.PathSeparator)) {
		n, err = WriteImageDir(cfg.Output, src, cfg.Format)
	} else {
		n, err = writeTIFFFile(cfg.Output, src)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output, err)
	}
	renderTime := watch()
	notice("wrote %d slices to %s in %s", n, cfg.Output, renderTime)
	if !cfg.Silent {
		logger.Noticef("render statistics\n%s", statsTable(r.Stats(), sc, renderTime))
	}
	notice("time cost: %s", total())
	return nil
}

// BuildScene generates the objects for cfg.Mode and builds them into a scene.
func BuildScene(tree *swc.Tree, cfg Config) (*scene.Objects, error) {
	var sc scene.Objects
	if cfg.Background != "" {
		bg, err := ParseVec3(cfg.Background)
		if err != nil {
			return nil, err
		}
		sc.SetBackground(bg)
	}
	var objs []scene.Object
	var err error
	switch cfg.Mode {
	case ModeSolidColor:
		objs, err = morph.Flat(tree, scene.SolidColor{RGB: white})
	case ModeSolidUnion:
		var obj scene.Object
		obj, err = morph.FlatUnion(tree, scene.SolidColor{RGB: white})
		objs = append(objs, obj)
	case ModePathDecay:
		start, ok := tree.RootID()
		if cfg.Node != nil {
			start, ok = *cfg.Node, true
		}
		if !ok {
			return nil, swc.ErrNoRoot
		}
		objs, err = morph.PathDecay(tree, start, morph.LinearDecay(white, ms3.Vec{}, cfg.Decay))
	default:
		err = fmt.Errorf("invalid mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, err
	}
	err = sc.Add(objs...)
	if err != nil {
		return nil, err
	}
	err = sc.Build()
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func writeTIFFFile(name string, src SliceReader) (int, error) {
	fp, err := os.Create(name)
	if err != nil {
		return 0, err
	}
	n, err := WriteTIFFStack(fp, src)
	if closeErr := fp.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// progress logs each slice as it is read.
type progress struct {
	r     *render.StackRenderer
	total int
	done  int
}

func (p *progress) Next() (*image.Gray, error) {
	img, err := p.r.Next()
	if err == nil {
		p.done++
		logger.Infof("slice %d/%d", p.done, p.total)
	}
	return img, err
}

func statsTable(st render.Stats, sc *scene.Objects, elapsed time.Duration) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Slices", "Image size", "Objects", "BVH nodes", "BVH depth", "Samples", "Workers", "Render time"})
	var bvh scene.BVHStats
	if sc.BVH() != nil {
		bvh = sc.BVH().Stats()
	}
	table.Append([]string{
		fmt.Sprintf("%d", st.Slices),
		fmt.Sprintf("%dx%d", st.Width, st.Height),
		fmt.Sprintf("%d", sc.Len()),
		fmt.Sprintf("%d", bvh.Nodes),
		fmt.Sprintf("%d", bvh.MaxDepth),
		fmt.Sprintf("%d", st.Samples),
		fmt.Sprintf("%d", st.Workers),
		elapsed.String(),
	})
	table.Render()
	return buf.String()
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
