// Package imaging composes album covers into fixed-size wallpapers.
//
// # Compositor
//
// The Compositor supports two layouts:
//
//   - ModeFill: the cover is resized to exactly the target resolution,
//     ignoring its aspect ratio.
//   - ModeLetterbox: the cover keeps its aspect ratio and is centered on an
//     opaque background. Covers are only scaled down, unless AllowUpscale
//     is set.
//
// Optional sharpening (both modes) and contrast/saturation boosts
// (letterbox only) run before scaling.
//
//	c := imaging.NewCompositor(imaging.Options{
//	    Resolution: model.Resolution{Width: 2560, Height: 1440},
//	    Mode:       imaging.ModeLetterbox,
//	    Sharpen:    true,
//	})
//	wallpaper := c.Compose(cover)
//
// # Encoding
//
//	enc := imaging.NewEncoder(imaging.EncoderOptions{Format: imaging.FormatJPEG, Quality: 95})
//	err := enc.Encode(w, wallpaper)
//
// # Helpers
//
// ToRGBA normalises decoded images to a single color model and Downscale
// caps the pixel dimensions of oversized downloads.
package imaging
