package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/soocke/microseg-go/app"
	"github.com/soocke/microseg-go/config"
)

const (
	flagConfig  = "config"
	flagEnv     = "env"
	flagBaseURL = "base-url"
	flagDataDir = "data-dir"
	flagDebug   = "debug"
)

func main() {
	cliApp := &cli.App{
		Name:  "microseg",
		Usage: "segment microscope captures",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Value:   "config.json",
				Usage:   "load and save settings in `FILE`",
			},
			&cli.StringFlag{
				Name:  flagEnv,
				Value: ".env",
				Usage: "read MICROSEG_* overrides from `FILE` if it exists",
			},
			&cli.StringFlag{
				Name:  flagBaseURL,
				Usage: "base URL of the microscope capture server",
			},
			&cli.StringFlag{
				Name:  flagDataDir,
				Usage: "directory downloaded captures are written to",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging and runtime diagnostics",
			},
		},
		Action: run,
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	cfgPath := c.String(flagConfig)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// Defaults are still usable; report and carry on.
		log.Printf("config: %v", err)
	}
	if err := cfg.ApplyEnv(c.String(flagEnv)); err != nil {
		return errors.Wrap(err, "environment")
	}
	if c.IsSet(flagBaseURL) {
		cfg.BaseURL = c.String(flagBaseURL)
	}
	if c.IsSet(flagDataDir) {
		cfg.DataDir = c.String(flagDataDir)
	}
	if c.Bool(flagDebug) {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	application := app.NewApp("Microscope Segmentation", cfg, cfgPath, logger)
	return application.Start()
}
