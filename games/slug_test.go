package games

import (
	"regexp"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Chess", "chess"},
		{"spaces", "Settlers of Catan", "settlers-of-catan"},
		{"punctuation runs", "Go!!  (the board game)", "go-the-board-game"},
		{"leading and trailing junk", "  --Chess--  ", "chess"},
		{"digits kept", "Connect 4", "connect-4"},
		{"non-ascii letters dropped", "Šachy", "achy"},
		{"non-ascii digits dropped", "Level ٣", "level"},
		{"empty", "", ""},
		{"only junk", "!!!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Slugify(tc.in); got != tc.want {
				t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

var slugPattern = regexp.MustCompile(`^chess-[0-9a-z]{6}$`)

func TestNewSlugShape(t *testing.T) {
	s := NewSlug("Chess")
	if !slugPattern.MatchString(s) {
		t.Fatalf("NewSlug(%q) = %q, want match for %v", "Chess", s, slugPattern)
	}
}

func TestNewSlugUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		s := NewSlug("Chess")
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate slug after %d draws: %q", i, s)
		}
		seen[s] = struct{}{}
	}
}

func TestNewSlugEmptyName(t *testing.T) {
	s := NewSlug("!!!")
	if !strings.HasPrefix(s, "game-") {
		t.Fatalf("NewSlug with no usable characters = %q, want game- prefix", s)
	}
}
