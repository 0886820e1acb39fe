package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/bodgit/img2mc"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	app := cli.NewApp()

	app.Name = "img2mc"
	app.Usage = "Convert images into Minecraft block art"
	app.Version = "1.0.0"

	defaults := img2mc.DefaultOptions()
	algorithm := defaults.Dither

	app.Flags = []cli.Flag{
		&cli.PathFlag{
			Name:     "textures",
			Aliases:  []string{"t"},
			EnvVars:  []string{"IMG2MC_TEXTURES"},
			Usage:    "path to the extracted assets/minecraft/textures/block folder",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "image file or http(s) URL to convert",
			Required: true,
		},
		&cli.PathFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "output file, .litematic or .schematic for a schematic otherwise an image",
			Required: true,
		},
		&cli.IntFlag{
			Name:    "width",
			Aliases: []string{"w"},
			Usage:   "width in blocks, derived from the image if not set",
		},
		&cli.IntFlag{
			Name:  "height",
			Value: defaults.Height,
			Usage: "height in blocks",
		},
		&cli.IntFlag{
			Name:    "resolution",
			Aliases: []string{"r"},
			EnvVars: []string{"IMG2MC_RESOLUTION"},
			Value:   defaults.Resolution,
			Usage:   "sub-cells compared along each side of a block, must divide 16",
		},
		&cli.GenericFlag{
			Name:    "dither",
			EnvVars: []string{"IMG2MC_DITHER"},
			Value:   &algorithm,
			Usage:   "dithering algorithm, JarvisJudiceNinke or FloydSteinberg",
		},
		&cli.BoolFlag{
			Name:    "survival",
			Aliases: []string{"s"},
			EnvVars: []string{"IMG2MC_SURVIVAL"},
			Usage:   "only use blocks obtainable in survival mode",
		},
		&cli.StringSliceFlag{
			Name:    "palette",
			Aliases: []string{"p"},
			Usage:   "only use these textures, overrides --survival",
		},
		&cli.PathFlag{
			Name:    "cache",
			EnvVars: []string{"IMG2MC_CACHE"},
			Usage:   "path to chunk color cache database",
		},
		&cli.IntFlag{
			Name:    "workers",
			EnvVars: []string{"IMG2MC_WORKERS"},
			Usage:   "number of workers, defaults to the number of CPUs",
		},
		&cli.BoolFlag{
			Name:  "uncompressed",
			Usage: "write the schematic without gzip compression",
		},
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "do not show progress",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = func(c *cli.Context) error {
		logger := log.New(io.Discard, "", 0)
		if c.Bool("verbose") {
			logger.SetOutput(os.Stderr)
		}

		opts := &img2mc.Options{
			Textures:     c.Path("textures"),
			Input:        c.String("input"),
			Output:       c.Path("output"),
			Width:        c.Int("width"),
			Height:       c.Int("height"),
			Resolution:   c.Int("resolution"),
			Dither:       algorithm,
			Palette:      c.StringSlice("palette"),
			Survival:     c.Bool("survival"),
			Cache:        c.Path("cache"),
			Workers:      c.Int("workers"),
			Uncompressed: c.Bool("uncompressed"),
		}
		if !c.Bool("quiet") {
			opts.Progress = os.Stderr
		}

		m, err := img2mc.New(opts, logger)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer m.Close()

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
		defer stop()

		if err := m.Run(ctx); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
