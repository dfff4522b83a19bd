// Package signals derives discrete business traits from a site's internal
// link paths and body text. Detection runs a fixed catalog in a fixed
// order, so identical input always yields identical output.
package signals

import (
	"strings"
)

// family is one row of the detection catalog. A family matches when any
// of its path segments appears in an internal link, or any of its
// keywords appears in the body text. Each family emits at most one signal.
type family struct {
	name     string
	signal   string
	segments []string
	keywords []string
}

// catalog order fixes the order of emitted signals and sources.
var catalog = []family{
	{
		name:     "hiring",
		signal:   "Actively hiring",
		segments: []string{"careers", "jobs"},
	},
	{
		name:     "content-marketing",
		signal:   "Invests in content marketing",
		segments: []string{"blog", "news"},
	},
	{
		name:     "product-development",
		signal:   "Active product development",
		segments: []string{"changelog", "releases", "release-notes"},
	},
	{
		name:     "developer-focused",
		signal:   "Developer-focused product",
		segments: []string{"docs", "api", "developers"},
	},
	{
		name:     "enterprise-readiness",
		signal:   "Enterprise readiness signals",
		segments: []string{"security", "compliance", "trust", "trust-center"},
		keywords: []string{"soc 2", "soc2", "soc-2", "iso 27001", "iso27001", "iso-27001", "hipaa", "pci dss"},
	},
	{
		name:     "ecosystem",
		signal:   "Ecosystem connectivity via integrations",
		segments: []string{"integrations"},
	},
	{
		name:     "multi-platform",
		signal:   "Multi-platform presence",
		segments: []string{"mobile"},
		keywords: []string{"app store", "google play", "play store", "download the app", "download our app", "ios app", "android app"},
	},
}

// Detection holds the signals emitted by one pass plus the link paths
// that triggered them. Keyword-only matches contribute no source path.
type Detection struct {
	Signals []string
	Sources []string
}

// Detect scans internal link paths and body text against the catalog.
// Slices in the result are never nil.
func Detect(links []string, bodyText string) Detection {
	detection := Detection{
		Signals: []string{},
		Sources: []string{},
	}

	lowerBody := strings.ToLower(bodyText)
	seenSources := make(map[string]bool)

	for _, fam := range catalog {
		matched := false

		if path := firstMatchingPath(links, fam.segments); path != "" {
			matched = true
			if !seenSources[path] {
				seenSources[path] = true
				detection.Sources = append(detection.Sources, path)
			}
		}

		if !matched {
			for _, keyword := range fam.keywords {
				if strings.Contains(lowerBody, keyword) {
					matched = true
					break
				}
			}
		}

		if matched {
			detection.Signals = append(detection.Signals, fam.signal)
		}
	}

	return detection
}

// firstMatchingPath returns the first link containing any of the given
// path segments, or "" when none match.
func firstMatchingPath(links, segments []string) string {
	for _, link := range links {
		for _, segment := range segments {
			if hasPathSegment(link, segment) {
				return link
			}
		}
	}
	return ""
}

// hasPathSegment matches whole path segments, so "/jobs" matches "jobs"
// but "/jobs-to-be-done" does not.
func hasPathSegment(path, segment string) bool {
	for _, part := range strings.Split(strings.ToLower(path), "/") {
		if part == segment {
			return true
		}
	}
	return false
}
