package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/config"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/delivery"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/server"
)

func main() {
	var (
		logLevel   = flag.String("loglevel", "", "Set the logging level: debug, info, warn, error (overrides config)")
		configFlag = flag.String("config", "", "Path to config file")
		envFlag    = flag.String("env", ".env", "Path to .env file")
		portFlag   = flag.Int("port", 0, "Port to listen on (overrides config)")
	)
	flag.Parse()

	if err := config.LoadEnv(*envFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *envFlag, err)
		os.Exit(1)
	}

	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := settings.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid environment: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}
	if *portFlag != 0 {
		settings.Port = *portFlag
	}

	level, err := logrus.ParseLevel(settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		os.Exit(1)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := settings.Validate(); err != nil {
		logrus.Fatalf("Invalid settings: %v", err)
	}
	if !settings.HasAPIKey() {
		logrus.Warn("LASTFM_API_KEY is not set; validation and generation will fail")
	}

	registry := delivery.NewRegistry(settings.ToRegistryOptions())
	defer registry.Close()

	if n := registry.Sweep(); n > 0 {
		logrus.WithField("removed", n).Info("Removed stale scratch directories")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(settings, registry).ListenAndServe(ctx); err != nil {
		logrus.WithField("event", "serve").Error(err)
		registry.Close()
		os.Exit(1)
	}
}
