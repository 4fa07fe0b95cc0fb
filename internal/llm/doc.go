// Package llm abstracts the text-completion capability behind a provider
// interface. The OpenAI provider supports chat with bound tool schemas for
// agent reasoning; the Gemini provider is a completion-only backend suitable
// for the translation model.
package llm
