package lastfm

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrUsernameRequired is returned for an empty username.
	ErrUsernameRequired = errors.New("username is required")

	// ErrInvalidUsername is returned for usernames with unsupported characters or length.
	ErrInvalidUsername = errors.New("username must be 2-64 characters of letters, digits, '_', '-' or '.'")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{2,64}$`)

// NormalizeUsername trims s and checks it against the accepted character set.
func NormalizeUsername(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrUsernameRequired
	}
	if !usernamePattern.MatchString(s) {
		return "", ErrInvalidUsername
	}
	return s, nil
}
