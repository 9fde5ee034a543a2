package main

import (
	"net/url"
	"strings"
)

const embedBaseURL = "https://www.youtube.com/embed/"

var videoHosts = map[string]bool{
	"youtube.com":       true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

// EmbedURL resolves a YouTube watch or short link into an embeddable player
// URL. Anything else, including unparsable input, reports false.
func EmbedURL(source string) (string, bool) {
	u, err := url.Parse(source)
	if err != nil {
		return "", false
	}

	var id string
	host := strings.TrimPrefix(u.Host, "www.")
	switch {
	case host == "youtu.be":
		id = strings.TrimLeft(u.Path, "/")
	case videoHosts[host]:
		id = u.Query().Get("v")
	default:
		return "", false
	}

	if id == "" {
		return "", false
	}
	return embedBaseURL + id, true
}
