package main

import (
	"errors"

	"github.com/urfave/cli"
	"github.com/yzx9/swc2mask/log"
	"github.com/yzx9/swc2mask/swcaux"
)

var logger = log.New("swc2mask")

func setupLogging(ctx *cli.Context) {
	switch {
	case ctx.GlobalBool("vv"):
		log.SetLevel(log.Debug)
	case ctx.GlobalBool("v"):
		log.SetLevel(log.Info)
	case ctx.GlobalBool("silent"):
		log.SetLevel(log.Warning)
	}
}

func renderStack(ctx *cli.Context) error {
	setupLogging(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	logger.Infof("rendering %s to %s in %s mode", cfg.Input, cfg.Output, cfg.Mode)
	return swcaux.Render(cfg)
}

// loadConfig starts from the config file, if any, and applies every flag set on the command line.
func loadConfig(ctx *cli.Context) (swcaux.Config, error) {
	cfg := swcaux.DefaultConfig()
	if ctx.IsSet("config") {
		var err error
		cfg, err = swcaux.LoadConfig(ctx.String("config"))
		if err != nil {
			return cfg, err
		}
	}
	switch ctx.NArg() {
	case 0:
	case 1:
		cfg.Input = ctx.Args().First()
	default:
		return cfg, errors.New("expected a single input file argument")
	}
	stringFlags := map[string]*string{
		"output":     &cfg.Output,
		"mode":       &cfg.Mode,
		"align":      &cfg.Align,
		"range":      &cfg.Range,
		"resolution": &cfg.Resolution,
		"background": &cfg.Background,
		"format":     &cfg.Format,
	}
	for name, dst := range stringFlags {
		if ctx.IsSet(name) {
			*dst = ctx.String(name)
		}
	}
	if ctx.IsSet("msaa") {
		cfg.MSAA = ctx.Int("msaa")
	}
	if ctx.IsSet("threads") {
		cfg.Threads = ctx.Int("threads")
	}
	if ctx.IsSet("decay") {
		cfg.Decay = float32(ctx.Float64("decay"))
	}
	if ctx.IsSet("node") {
		node := ctx.Int("node")
		cfg.Node = &node
	}
	if ctx.IsSet("reset-radius") {
		r := float32(ctx.Float64("reset-radius"))
		cfg.ResetRadius = &r
	}
	if ctx.IsSet("silent") {
		cfg.Silent = ctx.Bool("silent")
	}
	if cfg.Input == "" {
		return cfg, errors.New("missing input swc file argument")
	}
	return cfg, nil
}
