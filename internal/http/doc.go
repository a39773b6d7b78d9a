// Package http provides the HTTP client used for Last.fm API calls and
// cover art downloads.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - Non-200 responses as *StatusError, with the start of the body kept
//   - Size-capped downloads via DownloadBytes and CappedWriter
//
// # Basic Usage
//
//	client := http.NewClient(http.WithTimeout(10 * time.Second))
//
//	body, err := client.Get(ctx, apiURL)
//	if http.IsNotFound(err) {
//	    // unknown user
//	}
//
//	data, err := client.DownloadBytes(ctx, coverURL, 20<<20)
//	if errors.Is(err, http.ErrTooLarge) {
//	    // try another rendition
//	}
package http
