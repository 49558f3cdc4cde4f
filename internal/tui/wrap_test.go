package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var plain = lipgloss.NewStyle()

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("Create a list of squares", plain, 10)
	want := "Create a\nlist of\nsquares"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefghij", plain, 4)
	if got != "abcd\nefgh\nij" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapTextKeepsLineBreaks(t *testing.T) {
	got := wrapText("a b\nc d", plain, 80)
	if got != "a b\nc d" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestWrapTextWideRunes(t *testing.T) {
	got := wrapText("日本語 日本語", plain, 6)
	for _, line := range strings.Split(got, "\n") {
		if w := lipgloss.Width(line); w > 6 {
			t.Fatalf("line %q is %d columns wide", line, w)
		}
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	if got := wrapText("one two", plain, 0); got != "one two" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestBuildStyledRunesWidths(t *testing.T) {
	runes := buildStyledRunes("a\t日", plain)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if !runes[1].isSpace || runes[1].width != 1 {
		t.Fatalf("expected tab rendered as space, got %+v", runes[1])
	}
	if runes[2].width != 2 {
		t.Fatalf("expected wide rune, got %+v", runes[2])
	}
}
