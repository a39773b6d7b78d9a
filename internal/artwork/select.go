package artwork

import "github.com/Ziad0dev/lastfm-wallpaper/internal/model"

// SelectBestImageURL returns the cover URL with the highest known size weight.
//
// Only candidates with a non-empty URL are considered. If none of them carries
// a known size tag, the first non-empty URL is returned. The boolean is false
// when the album has no usable URL at all.
//
// Example:
//
//	url, ok := SelectBestImageURL(album)
//	if !ok {
//	    // no cover art, skip album
//	}
func SelectBestImageURL(album *model.Album) (string, bool) {
	if album == nil {
		return "", false
	}

	best, bestWeight := "", 0
	fallback := ""
	for _, img := range album.Images {
		if img.URL == "" {
			continue
		}
		if fallback == "" {
			fallback = img.URL
		}
		if w := img.Size.Weight(); w > bestWeight {
			best, bestWeight = img.URL, w
		}
	}

	if best != "" {
		return best, true
	}
	return fallback, fallback != ""
}
