package video

import (
	"fmt"
	"regexp"
	"strings"
)

// idLength is the length of a YouTube video identifier.
const idLength = 11

var linkPattern = regexp.MustCompile(`^.*(youtu\.be/|v/|u/\w/|embed/|watch\?v=|&v=)([^#&?]*).*`)

// ValidationError is returned for input rejected before any network call.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid video link %q: %s", e.Input, e.Reason)
}

// ExtractID returns the 11-character identifier of a YouTube link.
// Accepted shapes include youtu.be/<id>, /embed/<id>, /v/<id> and watch?v=<id>.
func ExtractID(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", &ValidationError{Input: link, Reason: "link is empty"}
	}
	m := linkPattern.FindStringSubmatch(link)
	if m == nil {
		return "", &ValidationError{Input: link, Reason: "not a recognized YouTube link"}
	}
	if len(m[2]) != idLength {
		return "", &ValidationError{Input: link, Reason: fmt.Sprintf("video id must be %d characters, got %d", idLength, len(m[2]))}
	}
	return m[2], nil
}

// ThumbnailURL returns the medium-quality thumbnail for a video id.
func ThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + id + "/mqdefault.jpg"
}

// WatchURL returns the canonical watch page for a video id.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
