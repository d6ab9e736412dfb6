package ports

import "context"

// ChatClient defines the interface for chat-completion calls against the
// lab's model provider.
type ChatClient interface {
	// Chat sends a system prompt and user text, returning the model reply
	Chat(ctx context.Context, systemPrompt, userText string) (string, error)
}

// Embedder defines the interface for text embeddings
type Embedder interface {
	// Embed returns the embedding vector for a text
	Embed(ctx context.Context, text string) ([]float32, error)
}
