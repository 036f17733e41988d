package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vooagent/voo/internal/models"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	htransport "google.golang.org/api/transport/http"
)

const (
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/"

	geminiAPIVersion = "v1beta"

	// responses above this are treated as malformed
	maxGeminiResponseBytes = 16 << 20
)

// GeminiClient calls generateContent on the Generative Language REST API.
// The HTTP client comes from Google's transport package, which attaches the
// API key to every request.
type GeminiClient struct {
	http      *http.Client
	endpoint  string
	model     string
	maxTokens int
}

// NewGeminiClient creates a client. baseURL overrides the API endpoint.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string, maxTokens int) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	if baseURL == "" {
		baseURL = DefaultGeminiEndpoint
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	hc, endpoint, err := htransport.NewClient(ctx,
		option.WithAPIKey(apiKey),
		option.WithEndpoint(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini transport: %w", err)
	}
	return &GeminiClient{http: hc, endpoint: endpoint, model: model, maxTokens: maxTokens}, nil
}

func (c *GeminiClient) Name() string {
	return string(ProviderGemini)
}

func (c *GeminiClient) methodURL() string {
	return c.endpoint + geminiAPIVersion + "/models/" + url.PathEscape(c.model) + ":generateContent"
}

func (c *GeminiClient) Complete(ctx context.Context, t models.Transcript, descriptors []models.ToolDescriptor) (models.ModelReply, error) {
	body, err := json.Marshal(c.buildRequest(t, descriptors))
	if err != nil {
		return models.ModelReply{}, &models.ModelError{
			Kind:     models.KindInvalidRequest,
			Provider: c.Name(),
			Message:  "encode request",
			Err:      err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(), bytes.NewReader(body))
	if err != nil {
		return models.ModelReply{}, &models.ModelError{
			Kind:     models.KindInvalidRequest,
			Provider: c.Name(),
			Message:  "build request",
			Err:      err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.ModelReply{}, c.wrapError(err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return models.ModelReply{}, c.wrapError(err)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGeminiResponseBytes))
	if err != nil {
		return models.ModelReply{}, c.wrapError(err)
	}
	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.ModelReply{}, malformed(c.Name(), "decode response: %v", err)
	}
	return c.toReply(out)
}

func (c *GeminiClient) wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = strings.TrimSpace(apiErr.Body)
		}
		retryAfter := parseRetryAfter(apiErr.Header)
		if retryAfter == 0 {
			retryAfter = geminiRetryDelay(apiErr.Details)
		}
		return &models.ModelError{
			Kind:       ClassifyStatus(apiErr.Code, msg),
			Provider:   c.Name(),
			StatusCode: apiErr.Code,
			Message:    msg,
			RetryAfter: retryAfter,
			Err:        err,
		}
	}
	return models.NewModelError(c.Name(), ClassifyTransportError(err), err)
}

// geminiRetryDelay reads the google.rpc.RetryInfo detail Gemini attaches to
// quota errors, e.g. {"@type": ".../google.rpc.RetryInfo", "retryDelay": "17s"}.
func geminiRetryDelay(details []interface{}) time.Duration {
	for _, d := range details {
		m, ok := d.(map[string]interface{})
		if !ok {
			continue
		}
		typ, _ := m["@type"].(string)
		if !strings.HasSuffix(typ, "google.rpc.RetryInfo") {
			continue
		}
		if v, ok := m["retryDelay"].(string); ok {
			if delay, err := time.ParseDuration(v); err == nil && delay > 0 {
				return delay
			}
		}
	}
	return 0
}

// ─── Wire format ──────────────────────────────────────────────────────────────
// REST shapes of generateContent, trimmed to the fields voo uses.

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type geminiFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type        string                  `json:"type"`
	Description string                  `json:"description,omitempty"`
	Properties  map[string]geminiSchema `json:"properties,omitempty"`
	Required    []string                `json:"required,omitempty"`
}

type geminiDeclaration struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Parameters  *geminiSchema `json:"parameters,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiDeclaration `json:"functionDeclarations"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      *geminiContent `json:"content"`
		FinishReason string         `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	UsageMetadata *struct {
		PromptTokenCount     json.Number `json:"promptTokenCount"`
		CandidatesTokenCount json.Number `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (c *GeminiClient) buildRequest(t models.Transcript, descriptors []models.ToolDescriptor) geminiRequest {
	wire := geminiRequest{Contents: geminiContents(t)}
	if t.System != "" {
		wire.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: t.System}}}
	}
	if len(descriptors) > 0 {
		wire.Tools = []geminiTool{{FunctionDeclarations: geminiDeclarations(descriptors)}}
	}
	if c.maxTokens > 0 {
		wire.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: c.maxTokens}
	}
	return wire
}

// geminiContents maps the transcript onto user/model contents. Consecutive
// tool results share one user content.
func geminiContents(t models.Transcript) []geminiContent {
	contents := make([]geminiContent, 0, len(t.Turns))
	var results []geminiPart

	flush := func() {
		if len(results) > 0 {
			contents = append(contents, geminiContent{Role: "user", Parts: results})
			results = nil
		}
	}

	for _, turn := range t.Turns {
		switch turn.Role {
		case models.RoleUser:
			flush()
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: turn.Text}}})
		case models.RoleAgent:
			flush()
			var parts []geminiPart
			if turn.Text != "" {
				parts = append(parts, geminiPart{Text: turn.Text})
			}
			for _, call := range turn.ToolCalls {
				parts = append(parts, geminiPart{FunctionCall: &geminiFunctionCall{Name: call.Name, Args: call.Arguments}})
			}
			if len(parts) > 0 {
				contents = append(contents, geminiContent{Role: "model", Parts: parts})
			}
		case models.RoleToolResult:
			if turn.Result == nil {
				continue
			}
			r := turn.Result
			results = append(results, geminiPart{FunctionResponse: &geminiFunctionResponse{
				Name: r.Name,
				Response: map[string]any{
					"success": r.Success,
					"content": r.Content(),
				},
			}})
		}
	}
	flush()
	return contents
}

func geminiDeclarations(descriptors []models.ToolDescriptor) []geminiDeclaration {
	decls := make([]geminiDeclaration, len(descriptors))
	for i, d := range descriptors {
		decl := geminiDeclaration{Name: d.Name, Description: d.Description}
		if len(d.Parameters) > 0 {
			schema := &geminiSchema{Type: "OBJECT", Properties: make(map[string]geminiSchema, len(d.Parameters))}
			for _, p := range d.Parameters {
				schema.Properties[p.Name] = geminiSchema{Type: strings.ToUpper(p.Type), Description: p.Description}
				if p.Required {
					schema.Required = append(schema.Required, p.Name)
				}
			}
			decl.Parameters = schema
		}
		decls[i] = decl
	}
	return decls
}

func (c *GeminiClient) toReply(resp geminiResponse) (models.ModelReply, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return models.ModelReply{}, &models.ModelError{
				Kind:     models.KindInvalidRequest,
				Provider: c.Name(),
				Message:  "prompt blocked: " + resp.PromptFeedback.BlockReason,
			}
		}
		return models.ModelReply{}, malformed(c.Name(), "response has no candidates")
	}

	var reply models.ModelReply
	if u := resp.UsageMetadata; u != nil {
		reply.Usage.InputTokens, _ = u.PromptTokenCount.Int64()
		reply.Usage.OutputTokens, _ = u.CandidatesTokenCount.Int64()
	}

	var text strings.Builder
	cand := resp.Candidates[0]
	for _, part := range cand.Content.Parts {
		text.WriteString(part.Text)
		if fc := part.FunctionCall; fc != nil {
			if fc.Name == "" {
				return models.ModelReply{}, malformed(c.Name(), "function call without a name")
			}
			args := fc.Args
			if args == nil {
				args = map[string]any{}
			}
			// generateContent does not correlate calls by ID
			reply.ToolCalls = append(reply.ToolCalls, models.ToolCallRequest{
				ID:        "call_" + uuid.NewString(),
				Name:      fc.Name,
				Arguments: args,
			})
		}
	}
	reply.Text = text.String()

	log.Debug().
		Str("provider", c.Name()).
		Str("finish_reason", cand.FinishReason).
		Int("tool_calls", len(reply.ToolCalls)).
		Msg("gemini completion")
	return reply, nil
}
