package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/aliabbas299792/ray-tracer/web/server"
)

func main() {
	app := &cli.App{
		Name:  "raytracer-web",
		Usage: "serve progressive renders over Server-Sent Events",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "port to serve on"},
			&cli.StringFlag{Name: "scenes-dir", Value: "scenes", Usage: "directory of YAML scene files"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: func(c *cli.Context) error {
			config := zap.NewDevelopmentConfig()
			if !c.Bool("debug") {
				config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return err
			}
			//nolint:errcheck
			defer logger.Sync()

			port := c.Int("port")
			logger.Sugar().Infof("Visit http://localhost:%d to start rendering", port)
			return server.NewServer(port, c.String("scenes-dir"), logger.Sugar()).Start()
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
