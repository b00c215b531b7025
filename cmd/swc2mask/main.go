package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := newApp()
	app.Action = renderStack
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	// Frees -v for verbose logging.
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "swc2mask"
	app.Usage = "render swc skeletons into grayscale image stacks"
	app.Version = "0.1.0"
	app.ArgsUsage = "input.swc"
	app.Description = `
Read a tree-structured morphology from an SWC file, convert every edge into a
round cone and classify each voxel of the rendered range as inside or outside
of the skeleton. Slices along z are written as pages of a single TIFF file, or
as numbered images when the output path ends with a slash.`
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML file with run configuration. Flags override its values",
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "output TIFF file, or directory when ending with '/'",
		},
		cli.StringFlag{
			Name:  "mode",
			Value: "solid_color",
			Usage: "scene generation mode: solid_color, solid_union or path_decay",
		},
		cli.IntFlag{
			Name:  "msaa",
			Value: 1,
			Usage: "samples per voxel: 1, 8, 27 or 64",
		},
		cli.BoolFlag{
			Name:  "silent",
			Usage: "only log warnings and errors",
		},
		cli.Float64Flag{
			Name:  "reset-radius",
			Usage: "overwrite the radius of every node",
		},
		cli.IntFlag{
			Name:  "node",
			Usage: "start node id for path_decay mode. Defaults to the root",
		},
		cli.Float64Flag{
			Name:  "decay",
			Usage: "path length over which path_decay fades from white to black",
		},
		cli.StringFlag{
			Name:  "align",
			Usage: "take the range from the size of a .v3dpbd volume. Overrides --range",
		},
		cli.StringFlag{
			Name:  "range",
			Usage: "rendered region as minx,miny,minz,maxx,maxy,maxz",
		},
		cli.IntFlag{
			Name:  "threads",
			Usage: "render workers. Defaults to the number of CPUs",
		},
		cli.StringFlag{
			Name:  "resolution",
			Value: "1,1,1",
			Usage: "voxel size as x,y,z",
		},
		cli.StringFlag{
			Name:  "background",
			Usage: "background color as r,g,b in [0,1]",
		},
		cli.StringFlag{
			Name:  "format",
			Value: "tif",
			Usage: "image format for directory output: tif or png",
		},
	}
	return app
}
