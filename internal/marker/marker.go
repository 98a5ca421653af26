// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package marker finds placeholder markers in template text. A marker is the
// text between {{ and }} or between << and >>, and may span lines.
package marker

import (
	"regexp"
	"strings"
)

var (
	curlyPattern = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)
	anglePattern = regexp.MustCompile(`(?s)<<(.*?)>>`)
)

// Extract returns the marker names found in text. All {{ }} markers come
// first in order of appearance, followed by all << >> markers in order of
// appearance. Names are trimmed; empty names are dropped and duplicates keep
// only their first position. The result is never nil.
func Extract(text string) []string {
	names := make([]string, 0)
	seen := make(map[string]bool)

	for _, re := range []*regexp.Regexp{curlyPattern, anglePattern} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
