package sec

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// blockElements start a new line in the extracted text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true, "ul": true, "ol": true,
	"table": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "center": true,
	"blockquote": true, "pre": true, "hr": true, "title": true,
}

// htmlToText converts a filing document to plain text, one block per line.
// Documents that are not HTML are returned with whitespace normalised.
func htmlToText(raw []byte) (string, error) {
	if !looksLikeHTML(raw) {
		return normalizeText(string(raw)), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse filing html: %w", err)
	}

	// Inline XBRL carries its hidden header in a display:none block.
	doc.Find("script, style, head, noscript, ix\\:header").Remove()
	doc.Find("[style*='display:none'], [style*='display: none']").Remove()

	var b strings.Builder
	walk(doc.Selection, &b)
	return normalizeText(b.String()), nil
}

func walk(sel *goquery.Selection, b *strings.Builder) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch name {
		case "#text":
			b.WriteString(s.Text())
			return
		case "#comment":
			return
		case "br", "hr":
			b.WriteByte('\n')
			return
		case "td", "th":
			b.WriteByte(' ')
		}

		block := blockElements[name]
		if block {
			b.WriteByte('\n')
		}
		walk(s, b)
		if block {
			b.WriteByte('\n')
		}
	})
}

func looksLikeHTML(raw []byte) bool {
	head := raw[:min(len(raw), 1024)]
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<")) ||
		bytes.Contains(head, []byte("<html")) ||
		bytes.Contains(head, []byte("<document"))
}

// normalizeText collapses whitespace within lines and drops blank lines.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// truncate cuts s to at most n characters on a rune boundary.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
