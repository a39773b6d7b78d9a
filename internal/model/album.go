package model

import (
	"strings"
	"unicode/utf8"

	ioutils "github.com/Ziad0dev/lastfm-wallpaper/internal/io"
)

// ImageSize is the size tag Last.fm attaches to each cover art URL.
type ImageSize string

const (
	// ImageSizeMega is the largest tag Last.fm emits (rarely populated).
	ImageSizeMega ImageSize = "mega"

	// ImageSizeExtraLarge is usually a 300x300 rendition.
	ImageSizeExtraLarge ImageSize = "extralarge"

	// ImageSizeLarge is usually a 174x174 rendition.
	ImageSizeLarge ImageSize = "large"

	// ImageSizeMedium is usually a 64x64 rendition.
	ImageSizeMedium ImageSize = "medium"

	// ImageSizeSmall is usually a 34x34 rendition.
	ImageSizeSmall ImageSize = "small"
)

// sizeWeights ranks the known size tags. Larger weight means a better candidate.
var sizeWeights = map[ImageSize]int{
	ImageSizeMega:       1200,
	ImageSizeExtraLarge: 600,
	ImageSizeLarge:      300,
	ImageSizeMedium:     174,
	ImageSizeSmall:      64,
}

// SizePriority lists the known size tags from best to worst.
var SizePriority = []ImageSize{
	ImageSizeMega,
	ImageSizeExtraLarge,
	ImageSizeLarge,
	ImageSizeMedium,
	ImageSizeSmall,
}

// Weight returns the ranking weight of the size tag, or 0 for unknown tags.
//
// Example:
//
//	ImageSizeExtraLarge.Weight() // 600
//	ImageSize("huge").Weight()   // 0
func (s ImageSize) Weight() int {
	return sizeWeights[s]
}

// ImageCandidate is one (size tag, URL) pair attached to an album.
type ImageCandidate struct {
	Size ImageSize
	URL  string
}

// Album represents one entry of a user's top albums chart.
//
// Album carries what the wallpaper pipeline needs:
//   - Name and Artist for logging and file naming
//   - Images, the ordered cover art candidates as returned by Last.fm
//   - Rank and PlayCount for display
//
// An Album is consumed once by the image fetcher and is not retained after
// its wallpaper has been produced or the attempt has failed.
//
// Example:
//
//	album := &Album{
//	    Name:   "Abbey Road",
//	    Artist: "The Beatles",
//	    Images: []ImageCandidate{{Size: ImageSizeLarge, URL: coverURL}},
//	}
//	album.FileName(".jpg") // "The Beatles - Abbey Road.jpg"
type Album struct {
	// Name is the album title.
	Name string

	// Artist is the album artist name.
	Artist string

	// URL is the album page on Last.fm.
	URL string

	// Rank is the 1-based chart position within the requested period.
	Rank int

	// PlayCount is how often the user scrobbled the album in the period.
	PlayCount int

	// Images contains the cover art candidates in the order Last.fm listed them.
	Images []ImageCandidate
}

// HasArtwork returns true if at least one candidate has a non-empty URL.
func (a *Album) HasArtwork() bool {
	for _, img := range a.Images {
		if img.URL != "" {
			return true
		}
	}
	return false
}

// DisplayName returns "Artist - Name" for logs and UI lists.
func (a *Album) DisplayName() string {
	return a.Artist + " - " + a.Name
}

// MaxFileNameLength is the maximum number of runes kept from "<artist> - <album>".
const MaxFileNameLength = 100

// FileName returns the wallpaper file name for this album with the given extension.
//
// The base name is "<artist> - <album>", sanitized and truncated to
// MaxFileNameLength runes. Two albums can map to the same file name; callers
// must not rely on uniqueness.
//
// Example:
//
//	(&Album{Artist: "AC/DC", Name: "Back in Black"}).FileName(".jpg")
//	// "AC_DC - Back in Black.jpg"
func (a *Album) FileName(ext string) string {
	name := ioutils.SanitizeFileName(a.Artist + " - " + a.Name)
	name = truncateRunes(name, MaxFileNameLength)
	name = strings.Trim(name, " .")
	if name == "" {
		name = "wallpaper"
	}
	return name + ext
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
