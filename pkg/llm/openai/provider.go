package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"branching-chat-be/pkg/llm"

	goopenai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	ModelName string
	client    *goopenai.Client
}

// Ensure OpenAIProvider implements LLMProvider
var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, modelName string) *OpenAIProvider {
	return &OpenAIProvider{
		ModelName: modelName,
		client:    goopenai.NewClient(apiKey),
	}
}

func (o *OpenAIProvider) buildRequest(history []llm.Message, options *llm.Options) goopenai.ChatCompletionRequest {
	messages := make([]goopenai.ChatCompletionMessage, len(history))
	for i, msg := range history {
		messages[i] = goopenai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	req := goopenai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	}

	if options.Reasoning {
		// Reasoning models reject the temperature parameter and use the
		// completion-token budget instead of max_tokens.
		if options.MaxTokens > 0 {
			req.MaxCompletionTokens = options.MaxTokens
		}
	} else {
		req.Temperature = float32(options.Temperature)
		if options.MaxTokens > 0 {
			req.MaxTokens = options.MaxTokens
		}
	}
	return req
}

func (o *OpenAIProvider) ChatStream(ctx context.Context, history []llm.Message, handler llm.StreamHandler, opts ...llm.Option) (string, error) {
	options := llm.BuildOptions(opts)

	req := o.buildRequest(history, options)
	req.Stream = true

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai stream: %w", err)
	}
	defer stream.Close()

	var accumulated strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return accumulated.String(), nil
		}
		if err != nil {
			return accumulated.String(), fmt.Errorf("openai stream recv: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		fragment := resp.Choices[0].Delta.Content
		if fragment == "" {
			continue
		}
		accumulated.WriteString(fragment)
		if err := handler(fragment); err != nil {
			return accumulated.String(), err
		}
	}
}

func (o *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.BuildOptions(opts)

	resp, err := o.client.CreateChatCompletion(ctx, o.buildRequest(history, options))
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
