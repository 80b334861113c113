package sec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const businessBody = "Acme designs wearable devices and consumer electronics, including smartwatches, " +
	"fitness trackers and the software services that connect them to phones and cloud platforms."

func annualHTML() string {
	return `<html><head><title>10-K</title><style>p{}</style></head><body>
<div style="display:none"><ix:header>hidden xbrl</ix:header></div>
<table>
<tr><td>Item 1.</td><td>Business</td></tr>
<tr><td>Item 1A.</td><td>Risk Factors</td></tr>
</table>
<p>Table of contents</p>
<p>Item 1. Business</p>
<p>Item 1A. Risk Factors</p>
<p>PART I</p>
<p><b>Item 1. Business</b></p>
<p>` + businessBody + `</p>
<p>Our&nbsp;products   are sold worldwide.<br>New line here.</p>
<!-- a comment -->
<script>var x = 1;</script>
<p>Item 1A. Risk Factors</p>
<p>Risks are many and varied and this paragraph should never appear in the business section text.</p>
</body></html>`
}

func TestHTMLToText(t *testing.T) {
	text, err := htmlToText([]byte(annualHTML()))
	require.NoError(t, err)

	assert.NotContains(t, text, "hidden xbrl")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "a comment")
	assert.Contains(t, text, "Our products are sold worldwide.\nNew line here.")
	for _, line := range strings.Split(text, "\n") {
		assert.Equal(t, strings.TrimSpace(line), line)
		assert.NotEmpty(t, line)
	}
}

func TestHTMLToText_PlainText(t *testing.T) {
	text, err := htmlToText([]byte("ITEM 1. BUSINESS\r\n\r\n   Plain   text filing.  \n"))
	require.NoError(t, err)
	assert.Equal(t, "ITEM 1. BUSINESS\nPlain text filing.", text)
}

func TestExtractSection_Annual(t *testing.T) {
	text, err := htmlToText([]byte(annualHTML()))
	require.NoError(t, err)

	section := extractSection(text, "10-K")
	assert.Contains(t, section, businessBody)
	assert.Contains(t, section, "sold worldwide")
	assert.NotContains(t, section, "Risks are many")
	assert.NotContains(t, section, "Table of contents")
}

func TestExtractSection_Quarterly(t *testing.T) {
	mdna := strings.Repeat("Revenue from wearables grew as customers adopted our health features. ", 3)
	statements := strings.Repeat("Condensed consolidated balance sheets and statements of operations. ", 3)

	t.Run("item 2", func(t *testing.T) {
		text := "Item 1. Financial Statements\n" + statements +
			"\nItem 2. Management’s Discussion and Analysis of Financial Condition\n" + mdna +
			"\nItem 3. Quantitative and Qualitative Disclosures\nMarket risk."
		section := extractSection(text, "10-Q")
		assert.Equal(t, strings.TrimSpace(mdna), section)
	})

	t.Run("falls back to item 1", func(t *testing.T) {
		text := "Item 1. Financial Statements\n" + statements +
			"\nItem 2. Management's Discussion and Analysis\nShort.\nItem 3. Controls"
		section := extractSection(text, "10-Q")
		assert.Equal(t, strings.TrimSpace(statements), section)
	})
}

func TestExtractSection_Registration(t *testing.T) {
	summary := strings.Repeat("We are a clinical-stage biotechnology company developing cell therapies. ", 3)
	text := "PROSPECTUS SUMMARY\n" + summary + "\nRISK FACTORS\nMany risks.\nBUSINESS\nToo short.\nMANAGEMENT\nDirectors."

	section := extractSection(text, "S-1")
	assert.Equal(t, strings.TrimSpace(summary), section)
}

func TestExtractSection_ShortIsEmpty(t *testing.T) {
	text := "Item 1. Business\nWe sell things.\nItem 1A. Risk Factors\nRisky."
	assert.Empty(t, extractSection(text, "10-K"))
	assert.Empty(t, extractSection(text, "8-K"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 10))
	assert.Equal(t, "hé", truncate("héllo", 2))
	assert.Equal(t, "héllo", truncate("héllo", 0))
	assert.Equal(t, "héllo", truncate("héllo", 5))
}
