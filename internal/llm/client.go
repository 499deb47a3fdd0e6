package llm

import "context"

// Request is a single chat turn sent to the remote model.
type Request struct {
	Model     string
	System    string
	User      string
	ImageURLs []string // attached as vision inputs after the text
	MaxTokens int
}

// Completion is the accumulated model reply.
type Completion struct {
	Content      string
	FinishReason string
	TotalTokens  int
}

// Truncated reports whether the model stopped at the output-token ceiling.
func (c *Completion) Truncated() bool {
	return c != nil && c.FinishReason == "length"
}

// Client talks to a chat-completion model. Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
	// Stream calls onDelta for every content fragment as it arrives. A non-nil
	// error from onDelta stops the stream. The returned Completion holds
	// whatever was accumulated, also when an error is returned.
	Stream(ctx context.Context, req Request, onDelta func(string) error) (*Completion, error)
}
