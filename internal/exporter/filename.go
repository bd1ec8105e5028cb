package exporter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename builds the export base name, reflecting any active filters: an
// active search appends a sanitized search segment and a non-"all" status
// filter appends a lowercased status segment.
func Filename(searchTerm, statusFilter string) string {
	name := "leads"
	if searchTerm != "" {
		name += "_busca-" + nonAlphanumeric.ReplaceAllString(searchTerm, "-")
	}
	if statusFilter != "" && statusFilter != "all" {
		name += "_status-" + strings.ToLower(statusFilter)
	}
	return name
}

// TimestampedName appends an ISO-8601 timestamp truncated to minutes, with
// colons swapped for hyphens so the name is filesystem-safe.
func TimestampedName(base, ext string, t time.Time) string {
	stamp := strings.ReplaceAll(t.UTC().Format("2006-01-02T15:04"), ":", "-")
	return fmt.Sprintf("%s_%s.%s", base, stamp, ext)
}
