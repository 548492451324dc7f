package utils

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
}

func TestTruncateRunes(t *testing.T) {
	if TruncateRunes("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if got := TruncateRunes("hello world", 5); got != "hello..." {
		t.Errorf("got %s", got)
	}
	if TruncateRunes("x", 0) != "x" {
		t.Error("max 0 returns as-is")
	}

	// Multi-byte input must be cut on rune boundaries.
	s := strings.Repeat("héllo wörld ", 40)
	got := TruncateRunes(s, 300)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a multi-byte character: %q", got[len(got)-6:])
	}
	if n := utf8.RuneCountInString(got); n != 303 {
		t.Errorf("rune count = %d, want 303", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("missing ellipsis")
	}
}
