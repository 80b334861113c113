package sec

import (
	"regexp"
	"strings"
)

// minSectionLength is the length at or below which a section counts as empty.
const minSectionLength = 100

// sectionRule delimits one filing section by its heading line and the
// heading that follows it.
type sectionRule struct {
	name  string
	start *regexp.Regexp
	end   *regexp.Regexp
}

const sep = `\s*[.:\-–—]?\s*`

// sectionRules are tried in order per form type; the first non-empty
// section wins.
var sectionRules = map[string][]sectionRule{
	"10-K": {
		{
			name:  "item 1 business",
			start: regexp.MustCompile(`(?im)^\s*item\s*1` + sep + `business\b[^\n]*`),
			end:   regexp.MustCompile(`(?im)^\s*item\s*(?:1a` + sep + `risk|1b|1c|2` + sep + `properties)`),
		},
	},
	"10-Q": {
		{
			name:  "item 2 md&a",
			start: regexp.MustCompile(`(?im)^\s*item\s*2` + sep + `management.?s\s+discussion[^\n]*`),
			end:   regexp.MustCompile(`(?im)^\s*item\s*(?:3|4)\b`),
		},
		{
			name:  "item 1 financial statements",
			start: regexp.MustCompile(`(?im)^\s*item\s*1` + sep + `financial\s+statements[^\n]*`),
			end:   regexp.MustCompile(`(?im)^\s*item\s*(?:1a|2)\b`),
		},
	},
	"S-1": {
		{
			name:  "business",
			start: regexp.MustCompile(`(?im)^\s*(?:our\s+)?business\s*$`),
			end:   regexp.MustCompile(`(?im)^\s*management\s*$|^\s*executive\s+compensation\s*$`),
		},
		{
			name:  "prospectus summary",
			start: regexp.MustCompile(`(?im)^\s*prospectus\s+summary\s*$`),
			end:   regexp.MustCompile(`(?im)^\s*(?:risk\s+factors|the\s+offering)\s*$`),
		},
	},
}

// extractSection returns the business section of a filing of the given
// form, or "" when no rule yields more than minSectionLength characters.
// A heading can appear in the table of contents as well as the body, so
// the longest span per rule is taken.
func extractSection(text, form string) string {
	for _, rule := range sectionRules[form] {
		if section := rule.longest(text); len(section) > minSectionLength {
			return section
		}
	}
	return ""
}

func (r sectionRule) longest(text string) string {
	best := ""
	for _, loc := range r.start.FindAllStringIndex(text, -1) {
		body := text[loc[1]:]
		if end := r.end.FindStringIndex(body); end != nil {
			body = body[:end[0]]
		}
		if body = strings.TrimSpace(body); len(body) > len(best) {
			best = body
		}
	}
	return best
}
