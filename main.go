// Package main is the command line renderer.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/aliabbas299792/ray-tracer/pkg/config"
	"github.com/aliabbas299792/ray-tracer/pkg/integrator"
	"github.com/aliabbas299792/ray-tracer/pkg/output"
	"github.com/aliabbas299792/ray-tracer/pkg/renderer"
	"github.com/aliabbas299792/ray-tracer/pkg/scene"
)

const (
	// Flags.
	flagConfig     = "config"
	flagDebug      = "debug"
	flagScene      = "scene"
	flagOutput     = "output"
	flagIntegrator = "integrator"
	flagWidth      = "width"
	flagSamples    = "samples"
	flagDepth      = "depth"
	flagVFov       = "vfov"
	flagAperture   = "aperture"
	flagPasses     = "passes"
	flagTileSize   = "tile-size"
	flagWorkers    = "workers"
	flagSeed       = "seed"
	flagNoProgress = "no-progress"
	flagScenesDir  = "scenes-dir"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	logger := zap.NewNop().Sugar()

	renderAction := func(c *cli.Context) error {
		cfg, err := renderConfigFromContext(c)
		if err != nil {
			return err
		}
		return runRender(c, cfg, logger, !flagContext(c, flagNoProgress).Bool(flagNoProgress))
	}

	return &cli.App{
		Name:  "raytracer",
		Usage: "render scenes of spheres with a Monte Carlo path tracer",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load render settings from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		}, renderFlags()...),
		Before: func(c *cli.Context) error {
			var err error
			logger, err = newLogger(c.Bool(flagDebug))
			return err
		},
		// Rendering is the default when no command is given
		Action: renderAction,
		Commands: []*cli.Command{
			{
				Name:   "render",
				Usage:  "render a scene to an image file",
				Flags:  renderFlags(),
				Action: renderAction,
			},
			{
				Name:  "scenes",
				Usage: "list built-in scenes and scene files",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagScenesDir, Value: "scenes", Usage: "directory containing YAML scene files"},
				},
				Action: func(c *cli.Context) error {
					return listScenes(c.App.Writer, c.String(flagScenesDir), logger)
				},
			},
		},
	}
}

// renderFlags returns a fresh set of render flags. The app and the render command each get
// their own instances so a flag given before the command is not shadowed by the command's copy.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagScene, Aliases: []string{"s"}, Usage: "built-in scene name or path to a YAML scene `FILE`"},
		&cli.StringFlag{Name: flagOutput, Aliases: []string{"o"}, Usage: "output `FILE` (.ppm, .pnm, .png or .webp)"},
		&cli.StringFlag{Name: flagIntegrator, Usage: "light transport: path or normals"},
		&cli.IntFlag{Name: flagWidth, Usage: "image width in pixels"},
		&cli.IntFlag{Name: flagSamples, Usage: "samples per pixel"},
		&cli.IntFlag{Name: flagDepth, Usage: "maximum ray bounce depth"},
		&cli.Float64Flag{Name: flagVFov, Usage: "vertical field of view in degrees"},
		&cli.Float64Flag{Name: flagAperture, Usage: "lens aperture, 0 for a pinhole"},
		&cli.IntFlag{Name: flagPasses, Usage: "number of progressive passes"},
		&cli.IntFlag{Name: flagTileSize, Usage: "tile size in pixels"},
		&cli.IntFlag{Name: flagWorkers, Usage: "parallel workers, 0 for one per CPU"},
		&cli.Int64Flag{Name: flagSeed, Usage: "random seed"},
		&cli.BoolFlag{Name: flagNoProgress, Usage: "disable the progress spinner"},
	}
}

// flagContext returns the nearest context in which name was given on the command line,
// so render flags work both before and after the render command.
func flagContext(c *cli.Context, name string) *cli.Context {
	for _, ctx := range c.Lineage() {
		if ctx.IsSet(name) {
			return ctx
		}
	}
	return c
}

// newLogger builds a console logger; debug lowers the level to show per-pass detail
func newLogger(debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building logger")
	}
	return logger.Sugar(), nil
}

// renderConfigFromContext loads the config file, if any, and applies command line flags
func renderConfigFromContext(c *cli.Context) (config.RenderConfig, error) {
	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.RenderConfig{}, err
		}
		cfg = loaded
	}

	flags := config.Flags{
		Scene:           flagContext(c, flagScene).String(flagScene),
		Output:          flagContext(c, flagOutput).String(flagOutput),
		Integrator:      flagContext(c, flagIntegrator).String(flagIntegrator),
		Width:           flagContext(c, flagWidth).Int(flagWidth),
		SamplesPerPixel: flagContext(c, flagSamples).Int(flagSamples),
		MaxDepth:        flagContext(c, flagDepth).Int(flagDepth),
		VFov:            flagContext(c, flagVFov).Float64(flagVFov),
		Passes:          flagContext(c, flagPasses).Int(flagPasses),
		TileSize:        flagContext(c, flagTileSize).Int(flagTileSize),
		Workers:         flagContext(c, flagWorkers).Int(flagWorkers),
		Seed:            flagContext(c, flagSeed).Int64(flagSeed),
	}
	if ctx := flagContext(c, flagAperture); ctx.IsSet(flagAperture) {
		aperture := ctx.Float64(flagAperture)
		flags.Aperture = &aperture
	}
	cfg.Resolve(flags)

	if err := cfg.Validate(); err != nil {
		return config.RenderConfig{}, err
	}
	return cfg, nil
}

// runRender builds the scene, renders it progressively and writes the final frame
func runRender(c *cli.Context, cfg config.RenderConfig, logger *zap.SugaredLogger, showProgress bool) error {
	s, err := cfg.BuildScene()
	if err != nil {
		return errors.Wrap(err, "building scene")
	}

	integratorInst, err := integrator.New(cfg.Integrator, s.Background)
	if err != nil {
		return err
	}

	pr, err := renderer.NewProgressiveRaytracer(s, cfg.ProgressiveConfig(), integratorInst, logger)
	if err != nil {
		return err
	}

	logger.Infow("rendering",
		"scene", cfg.Scene,
		"width", s.SamplingConfig.Width,
		"height", s.SamplingConfig.Height,
		"samplesPerPixel", s.SamplingConfig.SamplesPerPixel,
		"maxDepth", s.SamplingConfig.MaxDepth,
		"shapes", s.GetPrimitiveCount())

	var spinner *pterm.SpinnerPrinter
	if showProgress {
		spinner, err = pterm.DefaultSpinner.
			WithRemoveWhenDone(false).
			WithText("Rendering " + cfg.Scene).
			Start()
		if err != nil {
			return errors.Wrap(err, "starting progress spinner")
		}
	}

	startTime := time.Now()
	frame, stats, err := pr.Render(c.Context, func(result renderer.PassResult) {
		if spinner != nil {
			spinner.UpdateText(fmt.Sprintf("Rendering %s: pass %d, %.0f samples per pixel",
				cfg.Scene, result.PassNumber, result.Stats.AverageSamples))
		}
	})
	if err != nil {
		if spinner != nil {
			spinner.Fail("Render failed")
		}
		return err
	}

	outputPath := cfg.OutputPath(time.Now())
	if err := output.Save(outputPath, frame); err != nil {
		if spinner != nil {
			spinner.Fail("Saving render failed")
		}
		return err
	}

	elapsed := time.Since(startTime).Round(time.Millisecond)
	if spinner != nil {
		spinner.Success(fmt.Sprintf("Rendered %s in %s", outputPath, elapsed))
	}
	logger.Infow("render saved",
		"path", outputPath,
		"duration", elapsed,
		"averageSamples", stats.AverageSamples)
	return nil
}

// listScenes prints the built-in scenes and any scene files found in dir
func listScenes(w io.Writer, dir string, logger *zap.SugaredLogger) error {
	response, err := scene.ListAllScenes(dir, logger)
	if err != nil {
		return err
	}

	data := pterm.TableData{{"ID", "Name", "Group", "Description"}}
	for _, group := range response.Groups {
		for _, info := range group.Scenes {
			data = append(data, []string{info.ID, info.DisplayName, group.Name, info.Description})
		}
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "rendering scene table")
	}
	_, err = fmt.Fprintln(w, table)
	return err
}
