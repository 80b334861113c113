package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptThemeSystem is the system prompt for theme generation.
	// This prompt has no format placeholders.
	PromptThemeSystem = "theme_system"

	// PromptThemeExtraction asks for themes from filing passages.
	// The template expects %s placeholders for company, sector, industry and passages.
	PromptThemeExtraction = "theme_extraction"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// DefaultPrompts are the built-in templates, keyed by prompt name.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var DefaultPrompts = map[string]string{
	PromptThemeSystem: `You are a financial analyst specialising in thematic investing.
Given text about a company, extract the investment themes that apply.

Themes should be:
- Lowercase, 1-3 words each (e.g. "artificial intelligence", "cloud computing", "mobile")
- Specific enough to be actionable (not just "technology")
- Relevant to how thematic ETFs categorise stocks

Return a JSON array of objects with "theme" and "confidence" (0.0-1.0) keys.
Return at most 15 themes, sorted by confidence descending.
Output ONLY valid JSON, no other text.

Example output:
[
  {"theme": "artificial intelligence", "confidence": 0.95},
  {"theme": "cloud computing", "confidence": 0.85}
]`,

	PromptThemeExtraction: `Company: %s
Sector: %s
Industry: %s

Relevant business text:
%s`,
}
