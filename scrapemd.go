// Package scrapemd turns URLs into normalized markdown files. URLs are
// classified as video, document, or webpage content; each class has its own
// extraction path. Webpage scraping goes through a long-lived background
// daemon that keeps an authenticated browser session alive across
// invocations, with a transparent one-shot browser fallback when the daemon
// is unavailable.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, trafilatura/, yaml/).
package scrapemd
