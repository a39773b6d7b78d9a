// Package server exposes wallpaper generation over HTTP.
//
// Routes:
//
//	GET  /                 embedded HTML form
//	POST /validate         {"username"} -> {"valid", "message"}
//	POST /generate         {"username", "period"?, "limit"?} -> {"success", "count", "download_url", ...}
//	GET  /download/{key}   zip archive by token or username
//	GET  /health           {"status", "api_key_configured", "shared_secret_configured"}
//
// Input errors, Last.fm rejections and empty batches answer 400 with an
// {"error"} body. Unexpected failures answer 500 with a generic message and
// are logged in detail. Panics are recovered by chi's Recoverer.
package server
