package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"math"
	"time"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration

	"github.com/Ziad0dev/lastfm-wallpaper/internal/http"
	"github.com/Ziad0dev/lastfm-wallpaper/internal/imaging"
)

// ErrNoImage is returned when every URL variant of a cover failed.
var ErrNoImage = errors.New("no usable cover image")

// maxPixels rejects images whose header announces more pixels than this,
// before the pixel data is decoded.
const maxPixels = 64 << 20

// Options configures a Fetcher.
type Options struct {
	// Rules are the URL upgrade rules, in priority order.
	Rules []Rule

	// MaxBytes is the byte ceiling for a single download. Zero disables it.
	MaxBytes int64

	// MaxDimension caps the longest side of a decoded cover. Zero disables it.
	MaxDimension int

	// MaxTries is the number of attempts per variant for transient
	// failures (transport errors, 429 and 5xx). Values below 1 mean 1.
	MaxTries int

	// RetryCooldown is the wait before the second attempt; each further
	// attempt multiplies it by RetryExponent.
	RetryCooldown time.Duration
	RetryExponent float64
}

// DefaultOptions returns the Last.fm upgrade rules, a 20 MiB ceiling, a
// 4000px dimension cap and up to 3 tries per variant.
func DefaultOptions() Options {
	return Options{
		Rules:         DefaultRules,
		MaxBytes:      20 << 20,
		MaxDimension:  4000,
		MaxTries:      3,
		RetryCooldown: 200 * time.Millisecond,
		RetryExponent: 2,
	}
}

// Fetcher downloads cover art, trying higher-resolution variants first.
//
// Example usage:
//
//	f := NewFetcher(http.NewClient(), DefaultOptions())
//	cover, err := f.Download(ctx, coverURL)
//	if err != nil {
//	    // every variant failed
//	}
type Fetcher struct {
	client *http.Client
	opts   Options
}

// NewFetcher creates a new Fetcher.
func NewFetcher(client *http.Client, opts Options) *Fetcher {
	if opts.Rules == nil {
		opts.Rules = DefaultRules
	}
	return &Fetcher{client: client, opts: opts}
}

// Download fetches the cover at url and returns it as RGBA.
//
// Variants are tried in order (see Variants). A variant fails if the request
// fails, the body exceeds MaxBytes, or the data is not a decodable image; the
// next variant is then tried. The returned error wraps ErrNoImage when every
// variant failed, or the context error when ctx is done.
func (f *Fetcher) Download(ctx context.Context, url string) (*image.RGBA, error) {
	variants := Variants(url, f.opts.Rules)
	if len(variants) == 0 {
		return nil, ErrNoImage
	}

	log := logrus.WithField("url", url)
	var errs []error
	for _, v := range variants {
		img, err := f.fetch(ctx, v)
		if err == nil {
			log.WithFields(logrus.Fields{
				"variant": v,
				"size":    img.Bounds().Size().String(),
			}).Debug("Downloaded cover")
			return img, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithFields(logrus.Fields{"variant": v, "error": err}).Debug("Cover variant failed")
		errs = append(errs, fmt.Errorf("%s: %w", v, err))
	}

	return nil, fmt.Errorf("%w: %w", ErrNoImage, errors.Join(errs...))
}

func (f *Fetcher) fetch(ctx context.Context, url string) (*image.RGBA, error) {
	data, err := f.downloadWithRetry(ctx, url)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("unsupported image dimensions %dx%d", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return imaging.ToRGBA(imaging.Downscale(img, f.opts.MaxDimension)), nil
}

func (f *Fetcher) downloadWithRetry(ctx context.Context, url string) ([]byte, error) {
	tries := max(f.opts.MaxTries, 1)

	var err error
	for try := 0; try < tries; try++ {
		var data []byte
		data, err = f.client.DownloadBytes(ctx, url, f.opts.MaxBytes)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil || !isTransient(err) || try == tries-1 {
			break
		}
		logrus.WithFields(logrus.Fields{"url": url, "try": try + 1, "error": err}).Debug("Retrying cover download")
		f.waitForRetry(ctx, try)
	}
	return nil, err
}

func (f *Fetcher) waitForRetry(ctx context.Context, try int) {
	exp := f.opts.RetryExponent
	if exp < 1 {
		exp = 1
	}
	cooldown := time.Duration(float64(f.opts.RetryCooldown) * math.Pow(exp, float64(try)))
	if cooldown <= 0 {
		return
	}

	t := time.NewTimer(cooldown)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// isTransient reports whether a failed download is worth repeating.
func isTransient(err error) bool {
	if errors.Is(err, http.ErrTooLarge) {
		return false
	}
	var se *http.StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500
	}
	return true
}
