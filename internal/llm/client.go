// Package llm wraps the OpenAI chat completion API behind a call that always
// yields usable text. Failures come back as an inline error string rather
// than an error value, so callers can post the result without branching.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const replyTemperature = 0.7

// Client is the reply generator backed by the OpenAI chat completion API
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new reply generator client
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
	}
}

// NewClientWithBaseURL creates a client against an alternate API endpoint
func NewClientWithBaseURL(apiKey, baseURL, model string, timeout time.Duration) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
	}
}

// GenerateReply asks the model for a reply to userText shaped by the persona
// system prompt. Every call carries a deadline so a stalled API request can
// never hang the caller past the configured timeout. On any failure the
// returned string is a bracketed error marker, never empty.
func (c *Client) GenerateReply(ctx context.Context, userText, systemPrompt string, maxTokens int) string {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		return fmt.Sprintf("[OpenAI error: %v]", err)
	}

	if len(resp.Choices) == 0 {
		return "[OpenAI error: no response choices]"
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		return "[OpenAI error: empty response]"
	}
	return reply
}
