package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli"
	"github.com/yzx9/swc2mask/swcaux"
)

func parseArgs(t *testing.T, args ...string) (swcaux.Config, error) {
	t.Helper()
	var cfg swcaux.Config
	var loadErr error
	app := newApp()
	app.Action = func(ctx *cli.Context) error {
		cfg, loadErr = loadConfig(ctx)
		return nil
	}
	if err := app.Run(append([]string{"swc2mask"}, args...)); err != nil {
		t.Fatal(err)
	}
	return cfg, loadErr
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := parseArgs(t, "--mode", "path_decay", "--decay", "12", "--node", "3",
		"-o", "out/", "--reset-radius", "0.5", "--msaa", "8", "in.swc")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "in.swc" || cfg.Output != "out/" || cfg.Mode != swcaux.ModePathDecay {
		t.Errorf("bad config %+v", cfg)
	}
	if cfg.Decay != 12 || cfg.MSAA != 8 || cfg.Node == nil || *cfg.Node != 3 {
		t.Errorf("bad numeric flags %+v", cfg)
	}
	if cfg.ResetRadius == nil || *cfg.ResetRadius != 0.5 {
		t.Errorf("reset radius not set: %v", cfg.ResetRadius)
	}
	if cfg.Format != swcaux.FormatTIFF {
		t.Errorf("unset flags should keep defaults, got format %q", cfg.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestLoadConfigFileOverride(t *testing.T) {
	name := filepath.Join(t.TempDir(), "run.yaml")
	err := os.WriteFile(name, []byte("input: a.swc\noutput: a.tif\nmsaa: 27\nthreads: 3\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := parseArgs(t, "--config", name, "--threads", "5")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "a.swc" || cfg.MSAA != 27 || cfg.Threads != 5 {
		t.Errorf("flags should override file values, got %+v", cfg)
	}
	if cfg.Node != nil || cfg.ResetRadius != nil {
		t.Error("unset optional flags should stay nil")
	}
}

func TestLoadConfigMissingInput(t *testing.T) {
	if _, err := parseArgs(t, "-o", "x.tif"); err == nil {
		t.Error("expected missing input error")
	}
}

func TestVerboseFlags(t *testing.T) {
	for _, flag := range []string{"-v", "-vv", "--silent"} {
		cfg, err := parseArgs(t, flag, "-o", "x.tif", "in.swc")
		if err != nil {
			t.Fatalf("%s: %v", flag, err)
		}
		if cfg.Input != "in.swc" {
			t.Errorf("%s: bad input %q", flag, cfg.Input)
		}
	}
	var ran bool
	app := newApp()
	app.Action = func(ctx *cli.Context) error {
		ran = ctx.Bool("v")
		return nil
	}
	if err := app.Run([]string{"swc2mask", "-v", "in.swc"}); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Error("-v should reach the action as the verbose flag")
	}
}
