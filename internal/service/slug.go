package service

import (
	"path/filepath"
	"strings"
)

const (
	maxSlugLen       = 120
	momentSlugPrefix = "locket-"
)

// slugify lowers the input and collapses every non-alphanumeric run into a
// single dash. The result is deterministic for a given input.
func slugify(input string) string {
	slug := make([]rune, 0, len(input))
	lastDash := false
	for _, ch := range strings.ToLower(strings.TrimSpace(input)) {
		if (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') {
			slug = append(slug, ch)
			lastDash = false
			continue
		}
		if !lastDash {
			slug = append(slug, '-')
			lastDash = true
		}
	}

	out := strings.Trim(string(slug), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	if out == "" {
		out = "image"
	}
	return out
}

// slugFromFilename derives the slug for an uploaded file from its name,
// ignoring directories and the extension, so "Desert Sunset.jpg" yields
// "desert-sunset".
func slugFromFilename(filename string) string {
	base := filepath.Base(strings.TrimSpace(filename))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return slugify(stem)
}

// slugFromMomentID derives the slug for a synced moment from its external id.
// The prefix keeps moment slugs out of the namespace uploads use.
func slugFromMomentID(id string) string {
	return momentSlugPrefix + slugify(id)
}
