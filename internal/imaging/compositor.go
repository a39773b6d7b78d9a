package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	imgfx "github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/Ziad0dev/lastfm-wallpaper/internal/model"
)

// Mode selects how a cover is laid out on the wallpaper canvas.
type Mode int

const (
	// ModeFill resizes the cover to exactly the target resolution,
	// ignoring its aspect ratio.
	ModeFill Mode = iota

	// ModeLetterbox keeps the cover's aspect ratio and centers it on an
	// opaque background. Covers are never upscaled unless AllowUpscale is set.
	ModeLetterbox
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeLetterbox:
		return "letterbox"
	default:
		return "fill"
	}
}

// ParseMode converts a configuration string into a Mode.
//
// Accepted values are "fill" and "letterbox" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fill", "":
		return ModeFill, nil
	case "letterbox":
		return ModeLetterbox, nil
	default:
		return ModeFill, fmt.Errorf("unknown wallpaper mode %q (want fill or letterbox)", s)
	}
}

// Enhancement strengths. Sharpen is a gaussian sigma; the boosts are percentages.
const (
	sharpenSigma    = 0.6
	contrastBoost   = 5
	saturationBoost = 10
)

// Options configures a Compositor.
type Options struct {
	// Resolution is the exact size of every composed wallpaper.
	Resolution model.Resolution

	// Mode selects fill or letterbox layout.
	Mode Mode

	// Sharpen applies a light sharpening pass before scaling.
	Sharpen bool

	// Enhance applies small contrast and saturation boosts before scaling.
	// It only has an effect in letterbox mode.
	Enhance bool

	// AllowUpscale lets letterbox mode enlarge covers smaller than the target.
	AllowUpscale bool

	// Background is the canvas color behind letterboxed or transparent covers.
	Background color.RGBA
}

// DefaultOptions returns 1920x1080 fill mode on black with no enhancement.
func DefaultOptions() Options {
	return Options{
		Resolution: model.Resolution{Width: 1920, Height: 1080},
		Mode:       ModeFill,
		Background: color.RGBA{A: 0xff},
	}
}

// Compositor turns a cover image into a fixed-size wallpaper.
//
// Example usage:
//
//	c := NewCompositor(Options{
//	    Resolution: model.Resolution{Width: 1920, Height: 1080},
//	    Mode:       ModeLetterbox,
//	    Background: color.RGBA{A: 0xff},
//	})
//	wallpaper := c.Compose(cover) // always 1920x1080
type Compositor struct {
	opts Options
}

// NewCompositor creates a Compositor. An invalid resolution falls back to 1920x1080.
func NewCompositor(opts Options) *Compositor {
	if !opts.Resolution.Valid() {
		opts.Resolution = DefaultOptions().Resolution
	}
	opts.Background.A = 0xff
	return &Compositor{opts: opts}
}

// Options returns the compositor configuration.
func (c *Compositor) Options() Options {
	return c.opts
}

// Compose produces a wallpaper of exactly the configured resolution.
//
// The output is always an opaque *image.RGBA, ready to be encoded.
func (c *Compositor) Compose(src image.Image) *image.RGBA {
	src = c.enhance(src)

	tw, th := c.opts.Resolution.Width, c.opts.Resolution.Height
	canvas := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: c.opts.Background}, image.Point{}, draw.Src)

	if c.opts.Mode == ModeLetterbox {
		c.letterbox(canvas, src)
	} else {
		draw.CatmullRom.Scale(canvas, canvas.Bounds(), src, src.Bounds(), draw.Over, nil)
	}

	return canvas
}

func (c *Compositor) letterbox(canvas *image.RGBA, src image.Image) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	tw, th := canvas.Bounds().Dx(), canvas.Bounds().Dy()

	nw, nh := w, h
	if w > tw || h > th || c.opts.AllowUpscale {
		nw, nh = FitWithin(w, h, tw, th)
	}

	x := (tw - nw) / 2
	y := (th - nh) / 2
	dst := image.Rect(x, y, x+nw, y+nh)

	if nw == w && nh == h {
		draw.Draw(canvas, dst, src, bounds.Min, draw.Over)
		return
	}
	draw.CatmullRom.Scale(canvas, dst, src, bounds, draw.Over, nil)
}

func (c *Compositor) enhance(src image.Image) image.Image {
	img := src
	if c.opts.Sharpen {
		img = imgfx.Sharpen(img, sharpenSigma)
	}
	if c.opts.Enhance && c.opts.Mode == ModeLetterbox {
		img = imgfx.AdjustContrast(img, contrastBoost)
		img = imgfx.AdjustSaturation(img, saturationBoost)
	}
	return img
}

// FitWithin returns the largest size with the aspect ratio of w x h that
// fits inside maxW x maxH. Both results are at least 1.
//
// Example:
//
//	FitWithin(400, 200, 100, 100) // 100, 50
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))
	return nw, nh
}

// ParseHexColor parses "#rrggbb" or "rrggbb" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b uint8
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
