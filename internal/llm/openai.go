package llm

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/listing-studio/engine/pkg/config"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"github.com/listing-studio/engine/pkg/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type openAIClient struct {
	api *openai.Client
}

// NewOpenAIClient builds a client for any OpenAI-compatible endpoint.
func NewOpenAIClient(cfg config.LLMConfig) Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &openAIClient{api: openai.NewClientWithConfig(oc)}
}

var _ Client = (*openAIClient)(nil)

func (c *openAIClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	resp, err := c.api.CreateChatCompletion(ctx, chatRequest(req))
	if err != nil {
		return nil, wrapAPIError(err, req.Model)
	}
	out := &Completion{TotalTokens: resp.Usage.TotalTokens}
	if len(resp.Choices) > 0 {
		out.Content = resp.Choices[0].Message.Content
		out.FinishReason = string(resp.Choices[0].FinishReason)
	}
	return out, nil
}

func (c *openAIClient) Stream(ctx context.Context, req Request, onDelta func(string) error) (*Completion, error) {
	cr := chatRequest(req)
	cr.Stream = true
	cr.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := c.api.CreateChatCompletionStream(ctx, cr)
	if err != nil {
		return nil, wrapAPIError(err, req.Model)
	}
	defer stream.Close()

	out := &Completion{}
	var sb strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			out.Content = sb.String()
			return out, wrapAPIError(err, req.Model)
		}
		if chunk.Usage != nil {
			out.TotalTokens = chunk.Usage.TotalTokens
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			out.FinishReason = string(choice.FinishReason)
		}
		if delta := choice.Delta.Content; delta != "" {
			sb.WriteString(delta)
			if err := onDelta(delta); err != nil {
				out.Content = sb.String()
				return out, err
			}
		}
	}
	out.Content = sb.String()
	return out, nil
}

func chatRequest(req Request) openai.ChatCompletionRequest {
	var msgs []openai.ChatCompletionMessage
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.ImageURLs) == 0 {
		user.Content = req.User
	} else {
		user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: req.User})
		for _, u := range req.ImageURLs {
			user.MultiContent = append(user.MultiContent, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: u, Detail: openai.ImageURLDetailAuto},
			})
		}
	}
	msgs = append(msgs, user)
	return openai.ChatCompletionRequest{Model: req.Model, Messages: msgs, MaxTokens: req.MaxTokens}
}

func wrapAPIError(err error, model string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErr.Wrap(err, appErr.CodeDeadline, "model call timed out")
	}
	logger.L().Warn("model call failed", zap.String("model", model), zap.Error(err))
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return appErr.Wrap(err, appErr.CodeUnavailable, "model rate limited")
	}
	return appErr.Wrap(err, appErr.CodeUnavailable, "model call failed")
}
