package assistant

import (
	"context"
	"time"

	appErrors "finance-dashboard/errors"
	"finance-dashboard/logging"

	"github.com/sashabaranov/go-openai"
)

const DefaultTimeout = 30 * time.Second

// Client wraps an OpenAI-compatible chat-completion endpoint. Both call
// shapes (message list, single prompt) reduce to "submit prompt, receive
// text or a typed UPSTREAM failure". Every call carries a deadline.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
	}
}

// Message is a chat message for multi-turn conversations.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateReply submits a system prompt, prior history and the latest user
// message, returning the model's text reply.
func (c *Client) GenerateReply(ctx context.Context, systemMsg string, history []Message, userMsg string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemMsg,
		},
	}
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMsg,
	})

	return c.complete(ctx, messages, 0.7)
}

// Complete submits a single prompt without history.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		},
	}
	return c.complete(ctx, messages, 0.5)
}

func (c *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessage, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		logging.Logger.Errorf("text-generation call failed: %v", err)
		if ctx.Err() == context.DeadlineExceeded {
			return "", appErrors.New(appErrors.ErrUpstream, "The AI service timed out, try again later.")
		}
		return "", appErrors.New(appErrors.ErrUpstream, "The AI service is unavailable, try again later.")
	}

	if len(resp.Choices) == 0 {
		return "", appErrors.New(appErrors.ErrUpstream, "The AI service returned no response.")
	}

	return resp.Choices[0].Message.Content, nil
}
