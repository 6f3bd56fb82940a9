package games

import (
	"crypto/rand"
	"strings"
	"unicode"
)

const slugSuffixLen = 6

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// Slugify lowercases the name and collapses every run of non-alphanumeric
// characters into a single dash.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) && r < 128 || r >= '0' && r <= '9' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if b.Len() > 0 && !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// NewSlug derives the unique slug stored with a game: the slugified name
// plus a dash and six random base36 characters. The slug is computed once at
// creation and never recomputed, even when the name changes later.
func NewSlug(name string) string {
	buf := make([]byte, slugSuffixLen)
	// rand.Read on the crypto source never fails on supported platforms.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = base36[int(b)%len(base36)]
	}

	base := Slugify(name)
	if base == "" {
		base = "game"
	}
	return base + "-" + string(buf)
}
