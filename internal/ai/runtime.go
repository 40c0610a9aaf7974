package ai

import "context"

// Runtime is implemented by completion backends such as OpenRouter and a
// local Ollama.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used for runtime selection.
const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderOllama     = "ollama"
	ProviderLocal      = "local"
)
