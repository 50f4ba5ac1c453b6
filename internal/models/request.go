package models

import (
	"strings"
)

// Provider identifies which AI backend the server should forward a request to
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
	ProviderCustom Provider = "custom"
)

// ParseProvider normalizes a provider name. Returns false for unknown values.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI, true
	case ProviderClaude:
		return ProviderClaude, true
	case ProviderCustom:
		return ProviderCustom, true
	}
	return "", false
}

// AIRequestDraft carries everything needed to compose one AI request.
// SelectedIDs is the sole content source: the stricter gating from later
// backend revisions, where freshly extracted but unselected content does not
// qualify.
type AIRequestDraft struct {
	Provider    Provider
	Prompt      string
	SelectedIDs []string

	// UseCallerKey forwards the caller-supplied API key for the active
	// provider. The key for the other provider is omitted even if set.
	UseCallerKey bool
	OpenAIKey    string
	ClaudeKey    string

	// MaxTokens is forwarded as an integer when positive; zero lets the
	// server apply its own default.
	MaxTokens int
}
