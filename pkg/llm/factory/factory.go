package factory

import (
	"fmt"

	"branching-chat-be/pkg/llm"
	"branching-chat-be/pkg/llm/anthropic"
	"branching-chat-be/pkg/llm/ollama"
	"branching-chat-be/pkg/llm/openai"
)

// NewLLMProvider selects a provider backend by name. apiKey is the caller's
// credential for hosted providers; baseURL only applies to ollama.
func NewLLMProvider(providerType, modelName, apiKey, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewOpenAIProvider(apiKey, modelName), nil
	case "anthropic":
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return anthropic.NewAnthropicProvider(apiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
