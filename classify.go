package scrapemd

import (
	"net/url"
	"path"
	"strings"
)

// ContentClass identifies which extraction path a URL should take.
type ContentClass string

// Content classes. Anything that is not recognizably a video platform page
// or a document file is a webpage, the most general handler.
const (
	ClassVideo    ContentClass = "video"
	ClassDocument ContentClass = "document"
	ClassWebpage  ContentClass = "webpage"
)

// videoHosts are hostnames (matched against the host and its parent domains)
// that resolve to the video extraction path.
var videoHosts = map[string]bool{
	"youtube.com": true,
	"youtu.be":    true,
}

// documentExts are path extensions that resolve to the document extraction path.
var documentExts = map[string]bool{
	".pdf": true,
}

// Classify determines the content class of a URL using structural rules
// only. It performs no I/O and never fails: unrecognized or unparsable
// input classifies as ClassWebpage.
func Classify(rawURL string) ContentClass {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ClassWebpage
	}

	host := strings.ToLower(u.Hostname())
	if isVideoHost(host) {
		return ClassVideo
	}

	ext := strings.ToLower(path.Ext(u.Path))
	if documentExts[ext] {
		return ClassDocument
	}

	return ClassWebpage
}

// isVideoHost reports whether host or any parent domain of host is a known
// video platform (so www.youtube.com and m.youtube.com both match).
func isVideoHost(host string) bool {
	for host != "" {
		if videoHosts[host] {
			return true
		}
		i := strings.Index(host, ".")
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}
