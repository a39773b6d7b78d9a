package imaging

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Format is the file format wallpapers are written in.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// ParseFormat converts a configuration string into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpeg", "jpg", "":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want jpeg or png)", s)
	}
}

// EncoderOptions configures an Encoder.
type EncoderOptions struct {
	Format Format

	// Quality is the JPEG quality, 1-100. Ignored for PNG.
	Quality int
}

// Encoder writes composed wallpapers in the configured format.
type Encoder struct {
	opts EncoderOptions
}

// NewEncoder creates an Encoder. Out-of-range JPEG quality is clamped.
func NewEncoder(opts EncoderOptions) *Encoder {
	if opts.Format == "" {
		opts.Format = FormatJPEG
	}
	if opts.Quality <= 0 {
		opts.Quality = jpeg.DefaultQuality
	}
	opts.Quality = min(opts.Quality, 100)
	return &Encoder{opts: opts}
}

// Extension returns the file extension for the format, including the dot.
func (e *Encoder) Extension() string {
	if e.opts.Format == FormatPNG {
		return ".png"
	}
	return ".jpg"
}

// Encode writes img to w.
func (e *Encoder) Encode(w io.Writer, img image.Image) error {
	if e.opts.Format == FormatPNG {
		enc := png.Encoder{CompressionLevel: png.BestSpeed}
		return enc.Encode(w, img)
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: e.opts.Quality})
}
