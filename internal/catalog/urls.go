package catalog

import (
	"regexp"
	"strings"
)

// Matches the 11-character video id in watch, share and embed style YouTube URLs.
var videoIDPattern = regexp.MustCompile(`(?i)(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

// NormalizeVideoURL rewrites any recognized YouTube URL to its embed form.
//
// Already-embedded and unrecognized URLs pass through unchanged.
func NormalizeVideoURL(url string) string {
	if m := videoIDPattern.FindStringSubmatch(url); m != nil {
		return "https://www.youtube.com/embed/" + m[1]
	}

	if strings.Contains(url, "youtube.com/embed/") {
		return url
	}

	return url
}
