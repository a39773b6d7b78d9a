package lastfm

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// APIError is an error payload returned by the Last.fm API, e.g.
// {"error": 6, "message": "User not found"}.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Last.fm error: %s", e.Message)
}

// parseAPIError returns the API error carried by body, or nil.
func parseAPIError(body []byte) *APIError {
	if !gjson.ValidBytes(body) {
		return nil
	}
	code := gjson.GetBytes(body, "error")
	if !code.Exists() {
		return nil
	}

	msg := gjson.GetBytes(body, "message").String()
	if msg == "" {
		msg = "Unknown error"
	}
	return &APIError{Code: int(code.Int()), Message: msg}
}
