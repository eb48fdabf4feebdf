// Package cli contains the perception command line interface.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	debugFlag      = "debug"
	frameFlag      = "frame"
	fxFlag         = "fx"
	fyFlag         = "fy"
	cxFlag         = "cx"
	cyFlag         = "cy"
	skewFlag       = "skew"
	heightFlag     = "height"
	widthFlag      = "width"
	outFlag        = "out"
	inFlag         = "in"
	intrinsicsFlag = "intrinsics"
	depthFlag      = "depth"
	asciiFlag      = "ascii"
	normalsFlag    = "normals"
	kindFlag       = "kind"
	prettyFlag     = "pretty"
	minDepthFlag   = "min-depth"
	maxDepthFlag   = "max-depth"
)

func cameraInputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.PathFlag{
			Name:     intrinsicsFlag,
			Usage:    "camera intrinsics `FILE` (.intr)",
			Required: true,
		},
		&cli.PathFlag{
			Name:     depthFlag,
			Usage:    "depth image `FILE` (.npy, .npz or a raster format)",
			Required: true,
		},
		&cli.StringFlag{
			Name:  frameFlag,
			Usage: "frame of the depth image, defaults to the camera frame",
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "perception",
		Usage:           "project, deproject and render camera data",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
				EnvVars: []string{"PERCEPTION_DEBUG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "intrinsics",
				Usage: "write a camera intrinsics file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: frameFlag, Usage: "frame of the camera"},
					&cli.Float64Flag{Name: fxFlag, Usage: "x-axis focal length in pixels", Required: true},
					&cli.Float64Flag{Name: fyFlag, Usage: "y-axis focal length in pixels, defaults to fx"},
					&cli.Float64Flag{Name: cxFlag, Usage: "x-axis optical center in pixels"},
					&cli.Float64Flag{Name: cyFlag, Usage: "y-axis optical center in pixels"},
					&cli.Float64Flag{Name: skewFlag, Usage: "skew in pixels"},
					&cli.IntFlag{Name: heightFlag, Usage: "image height in pixels"},
					&cli.IntFlag{Name: widthFlag, Usage: "image width in pixels"},
					&cli.PathFlag{Name: outFlag, Usage: "output `FILE` (.intr)", Required: true},
				},
				Action: IntrinsicsAction,
			},
			{
				Name:  "deproject",
				Usage: "deproject a depth image into a point cloud",
				Flags: append(cameraInputFlags(),
					&cli.PathFlag{Name: outFlag, Usage: "output `FILE` (.pcd)", Required: true},
					&cli.BoolFlag{Name: asciiFlag, Usage: "write ascii instead of binary pcd data"},
					&cli.BoolFlag{Name: normalsFlag, Usage: "include surface normals"},
				),
				Action: DeprojectAction,
			},
			{
				Name:  "normals",
				Usage: "estimate the surface normals seen in a depth image",
				Flags: append(cameraInputFlags(),
					&cli.PathFlag{Name: outFlag, Usage: "output `FILE` (.npy or .npz)", Required: true},
				),
				Action: NormalsAction,
			},
			{
				Name:  "render",
				Usage: "render an image for display",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: kindFlag, Usage: "image kind", Value: "color"},
					&cli.PathFlag{Name: inFlag, Usage: "input `FILE`", Required: true},
					&cli.PathFlag{Name: outFlag, Usage: "output `FILE` in a raster format", Required: true},
					&cli.BoolFlag{Name: prettyFlag, Usage: "render depth images on a color ramp"},
					&cli.Float64Flag{Name: minDepthFlag, Usage: "nearest depth of the color ramp"},
					&cli.Float64Flag{Name: maxDepthFlag, Usage: "farthest depth of the color ramp", Value: 10},
				},
				Action: RenderAction,
			},
		},
	}
}
