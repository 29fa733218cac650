package constant

const (
	SenderSystem    = "system"
	SenderUser      = "user"
	SenderAssistant = "assistant"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"

	// Bound on internal retries when concurrent branch creations collide on
	// the same branch_order.
	BranchAllocationMaxRetries = 3

	// EmbedMessageTopicName is the in-process pub/sub topic for the message
	// embedding pipeline.
	EmbedMessageTopicName = "EMBED_MESSAGE_CONTENT"
)
