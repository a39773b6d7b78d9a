package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/config"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/tui"
)

func main() {
	var (
		outputFlag = flag.String("output", ".", "Directory to write archives to")
		configFlag = flag.String("config", "", "Path to config file")
	)
	flag.Parse()

	// The alternate screen owns the terminal; progress reaches the UI as events.
	logrus.SetOutput(io.Discard)

	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
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
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(settings, *outputFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
