package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/archive"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/artwork"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/delivery"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/imaging"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/lastfm"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/resources"
)

// Settings holds all configuration options.
type Settings struct {
	// Last.fm API
	APIBaseURL   string `json:"api_base_url"`
	APIKey       string `json:"api_key,omitempty"`
	SharedSecret string `json:"shared_secret,omitempty"`

	// HTTP server
	Port        int      `json:"port"`
	CORSOrigins []string `json:"cors_origins"`
	LogLevel    string   `json:"log_level"`

	// Wallpaper rendering
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Mode            string `json:"mode"` // fill, letterbox
	Sharpen         bool   `json:"sharpen"`
	Enhance         bool   `json:"enhance"`
	AllowUpscale    bool   `json:"allow_upscale"`
	BackgroundColor string `json:"background_color"`
	OutputFormat    string `json:"output_format"` // jpeg, png
	JPEGQuality     int    `json:"jpeg_quality"`

	// Album selection
	DefaultPeriod string `json:"default_period"`
	DefaultLimit  int    `json:"default_limit"`
	MaxLimit      int    `json:"max_limit"`

	// Resource limits
	MaxWorkers           int     `json:"max_workers"`
	MemoryPerWorkerMB    int     `json:"memory_per_worker_mb"`
	MinAvailableMemoryMB int     `json:"min_available_memory_mb"`
	JobTimeout           float64 `json:"job_timeout"`  // seconds
	HTTPTimeout          float64 `json:"http_timeout"` // seconds
	MaxImageBytes        int64   `json:"max_image_bytes"`
	MaxImageDimension    int     `json:"max_image_dimension"`
	DownloadMaxTries     int     `json:"download_max_tries"`
	RetryCooldown        float64 `json:"retry_cooldown"` // seconds
	RetryExponent        float64 `json:"retry_exponent"`
	CompressionLevel     int     `json:"compression_level"`

	// Archive lifecycle
	ScratchDir  string  `json:"scratch_dir"`
	DeleteGrace float64 `json:"delete_grace"` // seconds
	ArchiveTTL  float64 `json:"archive_ttl"`  // seconds
	StaleAge    float64 `json:"stale_age"`    // seconds
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		APIBaseURL:  lastfm.DefaultBaseURL,
		Port:        5000,
		CORSOrigins: []string{"*"},
		LogLevel:    "info",

		Width:           1920,
		Height:          1080,
		Mode:            "fill",
		Sharpen:         true,
		Enhance:         false,
		AllowUpscale:    false,
		BackgroundColor: "#000000",
		OutputFormat:    "jpeg",
		JPEGQuality:     95,

		DefaultPeriod: string(lastfm.DefaultPeriod),
		DefaultLimit:  lastfm.DefaultLimit,
		MaxLimit:      50,

		MaxWorkers:           8,
		MemoryPerWorkerMB:    100,
		MinAvailableMemoryMB: 500,
		JobTimeout:           30,
		HTTPTimeout:          10,
		MaxImageBytes:        20 << 20,
		MaxImageDimension:    4000,
		DownloadMaxTries:     3,
		RetryCooldown:        0.2,
		RetryExponent:        2,
		CompressionLevel:     archive.DefaultLevel,

		ScratchDir:  filepath.Join(os.TempDir(), "lastfm-wallpaper"),
		DeleteGrace: 60,
		ArchiveTTL:  3600,
		StaleAge:    3600,
	}
}

// Load reads settings from a JSON file.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
//
// Credentials are never written.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	out := *s
	out.APIKey, out.SharedSecret = "", ""

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// LoadEnv loads variables from the given .env files (".env" if none) into
// the process environment. Missing files are ignored; variables already set
// take precedence.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}

// ApplyEnv overrides settings from environment variables:
// LASTFM_API_KEY, LASTFM_SHARED_SECRET, PORT, LOG_LEVEL, WALLPAPER_MODE,
// WALLPAPER_WIDTH, WALLPAPER_HEIGHT and SCRATCH_DIR.
func (s *Settings) ApplyEnv() error {
	return s.applyEnv(os.LookupEnv)
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	var errs []error
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}

	str("LASTFM_API_KEY", &s.APIKey)
	str("LASTFM_SHARED_SECRET", &s.SharedSecret)
	str("LOG_LEVEL", &s.LogLevel)
	str("WALLPAPER_MODE", &s.Mode)
	str("SCRATCH_DIR", &s.ScratchDir)
	num("PORT", &s.Port)
	num("WALLPAPER_WIDTH", &s.Width)
	num("WALLPAPER_HEIGHT", &s.Height)

	return errors.Join(errs...)
}

// Validate checks settings that would otherwise fail deep inside a job.
func (s *Settings) Validate() error {
	var errs []error

	if !s.Resolution().Valid() {
		errs = append(errs, fmt.Errorf("invalid resolution %s", s.Resolution()))
	}
	if _, err := imaging.ParseMode(s.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := imaging.ParseFormat(s.OutputFormat); err != nil {
		errs = append(errs, err)
	}
	if _, err := imaging.ParseHexColor(s.BackgroundColor); err != nil {
		errs = append(errs, err)
	}
	if _, err := lastfm.ParsePeriod(s.DefaultPeriod); err != nil {
		errs = append(errs, err)
	}
	if s.Port <= 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", s.Port))
	}
	if s.ScratchDir == "" {
		errs = append(errs, errors.New("scratch_dir must be set"))
	}

	return errors.Join(errs...)
}

// HasAPIKey reports whether a Last.fm API key is configured.
func (s *Settings) HasAPIKey() bool {
	return s.APIKey != ""
}

// HasSharedSecret reports whether a Last.fm shared secret is configured.
func (s *Settings) HasSharedSecret() bool {
	return s.SharedSecret != ""
}

// Resolution returns the configured wallpaper size.
func (s *Settings) Resolution() model.Resolution {
	return model.Resolution{Width: s.Width, Height: s.Height}
}

// ToCompositorOptions converts settings to compositor options.
// Invalid mode or color values fall back to the defaults.
func (s *Settings) ToCompositorOptions() imaging.Options {
	opts := imaging.DefaultOptions()
	opts.Resolution = s.Resolution()
	opts.Sharpen = s.Sharpen
	opts.Enhance = s.Enhance
	opts.AllowUpscale = s.AllowUpscale

	if mode, err := imaging.ParseMode(s.Mode); err == nil {
		opts.Mode = mode
	}
	if bg, err := imaging.ParseHexColor(s.BackgroundColor); err == nil {
		opts.Background = bg
	}
	return opts
}

// ToEncoderOptions converts settings to encoder options.
func (s *Settings) ToEncoderOptions() imaging.EncoderOptions {
	format, err := imaging.ParseFormat(s.OutputFormat)
	if err != nil {
		format = imaging.FormatJPEG
	}
	return imaging.EncoderOptions{Format: format, Quality: s.JPEGQuality}
}

// ToPolicy converts settings to the worker pool policy.
func (s *Settings) ToPolicy() resources.Policy {
	return resources.Policy{
		MaxWorkers:        s.MaxWorkers,
		PerWorkerBytes:    uint64(max(s.MemoryPerWorkerMB, 0)) << 20,
		MinAvailableBytes: uint64(max(s.MinAvailableMemoryMB, 0)) << 20,
	}
}

// ToFetcherOptions converts settings to cover fetcher options.
func (s *Settings) ToFetcherOptions() artwork.Options {
	opts := artwork.DefaultOptions()
	opts.MaxBytes = s.MaxImageBytes
	opts.MaxDimension = s.MaxImageDimension
	opts.MaxTries = s.DownloadMaxTries
	opts.RetryCooldown = seconds(s.RetryCooldown)
	opts.RetryExponent = s.RetryExponent
	return opts
}

// ToRegistryOptions converts settings to archive registry options.
func (s *Settings) ToRegistryOptions() delivery.Options {
	return delivery.Options{
		ScratchRoot: s.ScratchDir,
		DeleteGrace: seconds(s.DeleteGrace),
		ArchiveTTL:  seconds(s.ArchiveTTL),
		StaleAge:    seconds(s.StaleAge),
	}
}

// JobTimeoutDuration returns the per-album time budget.
func (s *Settings) JobTimeoutDuration() time.Duration {
	return seconds(s.JobTimeout)
}

// HTTPTimeoutDuration returns the timeout for outbound requests.
func (s *Settings) HTTPTimeoutDuration() time.Duration {
	return seconds(s.HTTPTimeout)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
