// Package llm wraps the openai chat completions api for the chat lambdas.
package llm

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/prognoshealth/pathwayai/config"
)

// DefaultTimeout bounds a single completion when the caller's context has no
// deadline of its own.
const DefaultTimeout = 5 * time.Minute

// ErrEmptyCompletion is returned when the provider answers without choices.
var ErrEmptyCompletion = errors.New("no completion returned")

// DeltaFunc receives each non empty text delta of a streamed completion.
// Returning an error aborts the stream.
type DeltaFunc func(delta string) error

// Completer answers a message with a single completion.
type Completer interface {
	Complete(ctx context.Context, profile config.Profile, message string) (string, error)
}

// Streamer answers a message with a streamed completion.
type Streamer interface {
	Stream(ctx context.Context, profile config.Profile, message string, fn DeltaFunc) error
}

// Client talks to the openai api (or any api compatible with it).
type Client struct {
	api     *openai.Client
	timeout time.Duration
}

// NewClient returns a client for the given key. An empty baseURL means the
// public openai endpoint.
func NewClient(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &Client{api: openai.NewClientWithConfig(cfg), timeout: DefaultTimeout}
}

// request builds the chat completion request for a single user message.
func request(profile config.Profile, message string) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	if profile.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: profile.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	req := openai.ChatCompletionRequest{
		Model:     profile.Model,
		Messages:  messages,
		MaxTokens: profile.MaxTokens,
	}

	if profile.JSON() {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return req
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.timeout)
}

// Complete sends message and returns the trimmed completion text.
func (c *Client) Complete(ctx context.Context, profile config.Profile, message string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, request(profile, message))
	if err != nil {
		return "", errors.Wrapf(err, "chat completion with %s failed", profile.Model)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Stream sends message as a streamed completion and calls fn with every
// non empty delta, in order. It returns once the provider ends the stream,
// the provider fails, or fn returns an error.
func (c *Client) Stream(ctx context.Context, profile config.Profile, message string, fn DeltaFunc) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	stream, err := c.api.CreateChatCompletionStream(ctx, request(profile, message))
	if err != nil {
		return errors.Wrapf(err, "chat completion stream with %s failed", profile.Model)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return errors.Wrap(err, "stream receive failed")
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		if err := fn(delta); err != nil {
			return err
		}
	}
}
