package view

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

// Passage converts a reading's inline markup to terminal text. Bold and strong
// become ANSI bold when color is on and *asterisks* otherwise; <br> and </p>
// become line breaks; other tags are dropped and entities unescaped.
func Passage(markup string, color bool) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.TrimSpace(b.String())
			}
			// Unparseable remainder: keep it verbatim rather than drop text.
			b.Write(z.Raw())
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "b", "strong":
				b.WriteString(emphasis(color, true))
			case "br":
				b.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "b", "strong":
				b.WriteString(emphasis(color, false))
			case "p":
				b.WriteString("\n")
			}
		}
	}
}

func emphasis(color, open bool) string {
	switch {
	case !color:
		return "*"
	case open:
		return ansiBold
	default:
		return ansiReset
	}
}
