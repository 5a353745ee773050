package tui

import (
	"html"
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard is the system clipboard.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error)  { return clipboard.ReadAll() }
func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// plainText reduces clipboard contents to text. Some platforms hand over
// rich text or HTML fragments instead of the plain flavour.
func plainText(text string) string {
	switch {
	case strings.HasPrefix(text, `{\rtf`):
		text = stripRTF(text)
	case isHTML(text):
		text = stripHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r >= ' ' {
			return r
		}
		return -1
	}, text)
}

func isHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if !strings.HasPrefix(t, "<") {
		return false
	}
	return strings.HasPrefix(t, "<!doctype html") || strings.Contains(t, "<html") ||
		strings.Contains(t, "<meta") || strings.Contains(t, "</")
}

func stripHTML(text string) string {
	var b strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(html.UnescapeString(b.String()))
}

// stripRTF drops groups markers and control words. \par and \line become
// newlines, \tab a tab, and escaped braces and backslashes are kept.
func stripRTF(text string) string {
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '{', '}':
			continue
		case '\\':
		default:
			b.WriteRune(r)
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		next := runes[i+1]
		if next == '\\' || next == '{' || next == '}' {
			b.WriteRune(next)
			i++
			continue
		}
		if !isLetter(next) {
			i++
			continue
		}
		j := i + 1
		for j < len(runes) && isLetter(runes[j]) {
			j++
		}
		word := string(runes[i+1 : j])
		for j < len(runes) && (runes[j] == '-' || (runes[j] >= '0' && runes[j] <= '9')) {
			j++
		}
		if j < len(runes) && runes[j] == ' ' {
			j++
		}
		switch word {
		case "par", "line":
			b.WriteByte('\n')
		case "tab":
			b.WriteByte('\t')
		}
		i = j - 1
	}
	return b.String()
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
