package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/models"
)

const (
	DefaultAnthropicModel = "claude-sonnet-4-6"
	DefaultMaxTokens      = 4096
)

// AnthropicClient talks to the Anthropic Messages API (or a compatible
// provider) using native tool use.
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicClient creates a client. SDK retries are disabled; the agent
// owns the retry policy.
func NewAnthropicClient(apiKey, model, baseURL string, maxTokens int) *AnthropicClient {
	if model == "" {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (c *AnthropicClient) Name() string {
	return string(ProviderAnthropic)
}

func (c *AnthropicClient) Complete(ctx context.Context, t models.Transcript, descriptors []models.ToolDescriptor) (models.ModelReply, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.F(anthropic.Model(c.model)),
		MaxTokens: anthropic.F(int64(c.maxTokens)),
		Messages:  anthropic.F(anthropicMessages(t)),
	}
	if t.System != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(t.System),
		})
	}
	if len(descriptors) > 0 {
		params.Tools = anthropic.F(anthropicTools(descriptors))
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return models.ModelReply{}, c.wrapError(err)
	}

	reply := models.ModelReply{
		Usage: models.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}
	var text strings.Builder
	for _, block := range resp.Content {
		switch b := block.AsUnion().(type) {
		case anthropic.TextBlock:
			text.WriteString(b.Text)
		case anthropic.ToolUseBlock:
			args := map[string]any{}
			if len(b.Input) > 0 {
				if err := json.Unmarshal(b.Input, &args); err != nil {
					return models.ModelReply{}, malformed(c.Name(), "tool_use %s input: %v", b.Name, err)
				}
			}
			reply.ToolCalls = append(reply.ToolCalls, models.ToolCallRequest{
				ID:        b.ID,
				Name:      b.Name,
				Arguments: args,
			})
		}
	}
	reply.Text = text.String()

	log.Debug().
		Str("provider", c.Name()).
		Str("stop_reason", string(resp.StopReason)).
		Int("tool_calls", len(reply.ToolCalls)).
		Msg("anthropic completion")
	return reply, nil
}

func (c *AnthropicClient) wrapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		me := &models.ModelError{
			Kind:       ClassifyStatus(apiErr.StatusCode, apiErr.Error()),
			Provider:   c.Name(),
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
		if apiErr.Response != nil {
			me.RetryAfter = parseRetryAfter(apiErr.Response.Header)
		}
		return me
	}
	return models.NewModelError(c.Name(), ClassifyTransportError(err), err)
}

// anthropicMessages maps the transcript onto alternating user/assistant
// messages. Consecutive tool results share one user message.
func anthropicMessages(t models.Transcript) []anthropic.MessageParam {
	messages := make([]anthropic.MessageParam, 0, len(t.Turns))
	var results []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(results) > 0 {
			messages = append(messages, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, turn := range t.Turns {
		switch turn.Role {
		case models.RoleUser:
			flush()
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Text)))
		case models.RoleAgent:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if turn.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(turn.Text))
			}
			for _, call := range turn.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlockParam(call.ID, call.Name, call.Arguments))
			}
			if len(blocks) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(blocks...))
			}
		case models.RoleToolResult:
			if turn.Result == nil {
				continue
			}
			r := turn.Result
			results = append(results, anthropic.NewToolResultBlock(r.CallID, r.Content(), !r.Success))
		}
	}
	flush()
	return messages
}

func anthropicTools(descriptors []models.ToolDescriptor) []anthropic.ToolUnionUnionParam {
	params := make([]anthropic.ToolUnionUnionParam, len(descriptors))
	for i, d := range descriptors {
		params[i] = anthropic.ToolParam{
			Name:        anthropic.String(d.Name),
			Description: anthropic.String(d.Description),
			InputSchema: anthropic.F[interface{}](d.JSONSchema()),
		}
	}
	return params
}
