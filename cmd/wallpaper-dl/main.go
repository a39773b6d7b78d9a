package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/config"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/imaging"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/lastfm"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/wallpaper"
)

func main() {
	var (
		userFlag    = flag.String("user", "", "Last.fm username")
		periodFlag  = flag.String("period", "", "Chart period: overall, 7day, 1month, 3month, 6month, 12month")
		limitFlag   = flag.Int("limit", 0, "Number of albums (default from config)")
		outputFlag  = flag.String("output", ".", "Directory to write the archive to")
		configFlag  = flag.String("config", "", "Path to config file")
		modeFlag    = flag.String("mode", "", "Composition mode: fill or letterbox (overrides config)")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag  = flag.Bool("dry-run", false, "List albums without generating wallpapers")
	)

	flag.Parse()

	username := *userFlag
	if username == "" && flag.NArg() > 0 {
		username = flag.Arg(0)
	}
	if username == "" {
		fmt.Println("Last.fm Wallpaper Generator - Turn your top albums into wallpapers")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  wallpaper-dl -user <username> [options]")
		fmt.Println("  wallpaper-dl <username> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: wallpaper-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *verboseFlag {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

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

	if *modeFlag != "" {
		mode, err := imaging.ParseMode(*modeFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		settings.Mode = mode.String()
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}
	if !settings.HasAPIKey() {
		fmt.Fprintln(os.Stderr, "Error: LASTFM_API_KEY is not set")
		os.Exit(1)
	}

	username, err := lastfm.NormalizeUsername(username)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *periodFlag == "" {
		*periodFlag = settings.DefaultPeriod
	}
	period, err := lastfm.ParsePeriod(*periodFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	limit := *limitFlag
	if limit <= 0 {
		limit = settings.DefaultLimit
	}
	limit = lastfm.ClampLimit(limit, settings.MaxLimit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := wallpaper.NewManager(settings, func(event wallpaper.ProgressEvent) {
		if event.Level == wallpaper.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case wallpaper.LevelError:
			prefix = "[x] "
		case wallpaper.LevelWarning:
			prefix = "[!] "
		case wallpaper.LevelSuccess:
			prefix = "[+] "
		case wallpaper.LevelInfo:
			prefix = "[i] "
		default:
			prefix = "    "
		}

		fmt.Println(prefix + event.Message)
	})

	fmt.Println("Last.fm Wallpaper Generator")
	fmt.Println("----------------------------------------")
	fmt.Println()

	if _, err := manager.Initialize(ctx, username, period, limit); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *dryRunFlag {
		fmt.Println()
		for _, name := range manager.GetAlbumNames() {
			fmt.Println("  " + name)
		}
		fmt.Println("\n[Dry run - not generating]")
		return
	}

	fmt.Printf("\nRendering %s wallpapers...\n\n", settings.Resolution())

	res, err := manager.Build(ctx, username)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			fmt.Println("\nGeneration cancelled.")
			os.Exit(130)
		case errors.Is(err, wallpaper.ErrNoWallpapers):
			fmt.Fprintln(os.Stderr, wallpaper.NoWallpapersMessage)
		default:
			fmt.Fprintf(os.Stderr, "Error during generation: %v\n", err)
		}
		os.Exit(1)
	}

	path, err := wallpaper.Export(ctx, res.Archive, *outputFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing archive: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("----------------------------------------")
	fmt.Printf("Done! %d wallpapers in %s (%.2f MB)\n", res.Archive.Files, path, float64(res.Archive.Size)/1024/1024)
	if res.Failed > 0 {
		fmt.Printf("   (%d albums skipped)\n", res.Failed)
	}
}
