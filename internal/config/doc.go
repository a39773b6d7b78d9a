// Package config provides configuration management for lastfm-wallpaper.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Environment overrides, optionally read from a .env file
//   - Conversion to the option types of the imaging, artwork, resources
//     and delivery packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// 1920x1080 fill-mode JPEG wallpapers
//	// top 10 albums of all time, at most 50
//	// archives kept for an hour, deleted 60s after download
//
// # Loading
//
//	if err := config.LoadEnv(); err != nil {
//	    // malformed .env file
//	}
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//	err = settings.ApplyEnv()
//
// # Environment
//
//	LASTFM_API_KEY        Last.fm API key (required for the API)
//	LASTFM_SHARED_SECRET  Last.fm shared secret (reported by /health)
//	PORT                  HTTP listen port
//	LOG_LEVEL             logrus level name
//	WALLPAPER_MODE        fill or letterbox
//	WALLPAPER_WIDTH       output width in pixels
//	WALLPAPER_HEIGHT      output height in pixels
//	SCRATCH_DIR           root of per-job scratch directories
//
// Credentials are read from the environment or the JSON file but are never
// written back by Save.
package config
