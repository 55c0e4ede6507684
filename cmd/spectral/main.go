package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"

	"spectral/internal/config"
	"spectral/internal/game"
	"spectral/internal/logging"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code.
func run() int {
	configPath := flag.String("config", "spectral.yaml", "config file; defaults are used when it does not exist")
	scenePath := flag.String("scene", "", "scene file to open, overriding the config")
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	flag.Parse()

	// Change working directory to executable location for deployed builds.
	// Skip this for "go run" which puts the binary in a temp directory.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			os.Chdir(execDir)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *scenePath != "" {
		cfg.Scene.Path = *scenePath
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	switch *profileMode {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		fmt.Fprintf(os.Stderr, "unknown -profile %q (want cpu or mem)\n", *profileMode)
		return 2
	}

	if err := game.New(cfg).Run(); err != nil {
		logging.Logger().Error("spectral: exiting", "err", err)
		return 1
	}
	return 0
}
