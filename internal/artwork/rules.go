package artwork

import (
	"regexp"

	"github.com/samber/lo"
)

// Rule rewrites a cover URL into a (hopefully) higher-resolution variant.
type Rule struct {
	// Name identifies the rule in logs and tests.
	Name string

	// Pattern selects the part of the URL to rewrite.
	Pattern *regexp.Regexp

	// Replacement follows regexp.ReplaceAllString syntax ($1, ${name}).
	Replacement string
}

// Apply returns the rewritten URL and whether the rule matched.
func (r Rule) Apply(url string) (string, bool) {
	if !r.Pattern.MatchString(url) {
		return url, false
	}
	out := r.Pattern.ReplaceAllString(url, r.Replacement)
	return out, out != url
}

// DefaultRules lists the upgrade rules in priority order.
//
// Last.fm serves the same artwork under several size segments
// ("/i/u/300x300/<id>.png", "/i/u/174s/<id>.png"); "/i/u/<id>.png" is the
// uploaded original.
var DefaultRules = []Rule{
	{
		Name:        "lastfm-original",
		Pattern:     regexp.MustCompile(`/i/u/(?:\d+x\d+|\d+s|ar0)/`),
		Replacement: "/i/u/",
	},
	{
		Name:        "size-in-path",
		Pattern:     regexp.MustCompile(`/300x300/`),
		Replacement: "/500x500/",
	},
	{
		Name:        "size-token",
		Pattern:     regexp.MustCompile(`/(?:34|64|174)s/`),
		Replacement: "/500x500/",
	},
	{
		Name:        "strip-query",
		Pattern:     regexp.MustCompile(`\?.*$`),
		Replacement: "",
	},
}

// Variants returns the ordered list of URLs to try for a cover.
//
// Each rule is applied to the original URL in priority order; every rule
// that changes the URL contributes one variant. Duplicates are removed and
// the original URL is always the last entry.
//
// Example:
//
//	Variants("https://lastfm.freetls.fastly.net/i/u/174s/abc.png", DefaultRules)
//	// [".../i/u/abc.png", ".../i/u/500x500/abc.png", ".../i/u/174s/abc.png"]
func Variants(url string, rules []Rule) []string {
	if url == "" {
		return nil
	}

	variants := make([]string, 0, len(rules)+1)
	for _, rule := range rules {
		if v, ok := rule.Apply(url); ok && v != "" {
			variants = append(variants, v)
		}
	}

	variants = lo.Without(lo.Uniq(variants), url)
	return append(variants, url)
}
