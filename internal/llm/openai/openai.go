package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/aae42/clippy-clippy/internal/common"
	"github.com/aae42/clippy-clippy/internal/config"
	"github.com/aae42/clippy-clippy/internal/imaging"
	"github.com/aae42/clippy-clippy/internal/llm"
)

var _ llm.Client = (*Client)(nil)

const (
	endpointChatCompletions = "v1/chat/completions"

	errorSnippetLimit = 400

	// Vision backends downsample large images at lower detail settings,
	// which loses small glyphs. OCR wants the full-resolution path.
	imageDetail = "high"
)

// Role represents the sender role for a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// PartType represents the type for a multimodal message part.
type PartType string

const (
	PartText     PartType = "text"
	PartImageURL PartType = "image_url"
)

// Client implements llm.Client against an OpenAI-compatible chat-completions
// endpoint. One invocation sends exactly one request.
type Client struct {
	httpClient *http.Client
	log        *log.Logger
	baseURL    string
	apiKey     string
	model      string
	system     string
	maxTokens  int
}

// New creates a client from the resolved configuration. A configured
// endpoint may or may not carry the /v1 suffix; both forms are accepted.
func New(cfg *config.Config, logger *log.Logger) *Client {
	base := strings.TrimRight(cfg.Endpoint, "/")
	base = strings.TrimSuffix(base, "/v1")
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		log:        logger,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		system:     cfg.SystemPrompt,
		maxTokens:  cfg.MaxTokens,
	}
}

// Transcribe sends one chat completion request embedding the image and
// returns the first choice's message content.
func (c *Client) Transcribe(ctx context.Context, img *imaging.Encoded, mode llm.Mode) (string, error) {
	reqBody := c.buildRequestBody(img.DataURL(), mode)

	u, err := url.JoinPath(c.baseURL, endpointChatCompletions)
	if err != nil {
		return "", fmt.Errorf("join url: %w", err)
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set(common.HeaderContentType, common.ContentTypeJSON)
	req.Header.Set(common.HeaderRequestID, uuid.NewString())
	if strings.TrimSpace(c.apiKey) != "" {
		req.Header.Set(common.HeaderAuthorization, common.AuthSchemeBearer+" "+c.apiKey)
	}

	c.log.Debug("sending transcription request", "endpoint", u, "model", c.model, "mode", mode.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", &llm.TransportError{Err: ctx.Err()}
		}
		return "", &llm.TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", statusError(resp.StatusCode, respBytes)
	}

	var comp chatCompletionResponse
	if err := json.Unmarshal(respBytes, &comp); err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrMalformedResponse, err)
	}
	if comp.Error != nil && comp.Error.Message != "" {
		// Some providers report failures inside a 200 body.
		return "", &llm.StatusError{StatusCode: resp.StatusCode, APIMessage: comp.Error.Message}
	}
	if comp.Usage != nil {
		c.log.Debug("token usage",
			"prompt", comp.Usage.PromptTokens,
			"completion", comp.Usage.CompletionTokens,
			"total", comp.Usage.TotalTokens)
	}
	if len(comp.Choices) == 0 || strings.TrimSpace(comp.Choices[0].Message.Content) == "" {
		return "", llm.ErrMalformedResponse
	}
	return comp.Choices[0].Message.Content, nil
}

func (c *Client) buildRequestBody(imageDataURL string, mode llm.Mode) chatCompletionRequest {
	instruction := mode.Instruction()
	detail := imageDetail
	return chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    RoleSystem,
				Content: c.system,
			},
			{
				Role: RoleUser,
				Content: []messagePart{
					{Type: PartText, Text: &instruction},
					{Type: PartImageURL, ImageURL: &imageURL{URL: imageDataURL, Detail: &detail}},
				},
			},
		},
		MaxTokens: c.maxTokens,
	}
}

func statusError(status int, body []byte) *llm.StatusError {
	se := &llm.StatusError{
		StatusCode: status,
		Body:       truncate(string(body), errorSnippetLimit),
	}
	var envelope struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		se.APIMessage = envelope.Error.Message
	}
	return se
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// OpenAI-compatible Chat Completions request/response types

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    Role `json:"role"`
	Content any  `json:"content"` // string or []messagePart
}

type messagePart struct {
	Type     PartType  `json:"type"`                // "text" | "image_url"
	Text     *string   `json:"text,omitempty"`      // when Type == "text"
	ImageURL *imageURL `json:"image_url,omitempty"` // when Type == "image_url"
}

type imageURL struct {
	URL    string  `json:"url"`
	Detail *string `json:"detail,omitempty"`
}

type chatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Choices []chatCompletionChoice `json:"choices"`
	Usage   *chatCompletionUsage   `json:"usage,omitempty"`
	Error   *apiError              `json:"error,omitempty"`
}

type chatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      responseMsg `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type responseMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
