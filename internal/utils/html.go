package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText strips markup from an HTML email body and collapses whitespace.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	doc.Find("script, style").Each(func(i int, el *goquery.Selection) {
		el.Remove()
	})

	text := doc.Text()
	return strings.Join(strings.Fields(text), " ")
}

// Snippet derives the one-line preview shown in the message list from an
// HTML body, capped at max runes.
func Snippet(htmlBody string, max int) string {
	text := HTMLToText(htmlBody)
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return strings.TrimSpace(string(runes[:max]))
}
