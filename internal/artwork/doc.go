// Package artwork resolves and downloads album cover art.
//
// # Choosing a URL
//
// Last.fm lists each cover under several size tags. SelectBestImageURL
// picks the one with the highest weight (mega > extralarge > large >
// medium > small), falling back to the first non-empty URL:
//
//	url, ok := artwork.SelectBestImageURL(album)
//
// # Resolution upgrades
//
// The listed renditions are small. Variants rewrites a URL with a
// declarative table of Rules, evaluated in priority order, to probe for
// larger renditions first; the original URL is always tried last. New hosts
// are supported by adding rules, without touching the fetch logic.
//
// # Downloading
//
//	f := artwork.NewFetcher(client, artwork.DefaultOptions())
//	cover, err := f.Download(ctx, url)
//
// Each variant is downloaded with a byte ceiling, decoded (JPEG, PNG, GIF,
// WebP, BMP), downscaled to MaxDimension and converted to RGBA.
package artwork
