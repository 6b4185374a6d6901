// Package extract is the AI-assisted extraction client: it sends document
// text or page images to an OpenAI-compatible service under a fixed vendor
// field contract and parses the (often messy) JSON responses.
package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tilbrook/vendex/internal/vendor"
)

// ServiceError is a failure of the AI extraction service. Retryable
// failures (rate limits, server errors) may be re-attempted by the caller;
// everything else should trigger the local fallback immediately.
type ServiceError struct {
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ai service error (status %d, retryable %t): %s",
		e.StatusCode, e.Retryable, truncate(e.Message, 200))
}

// IsRetryable checks whether an error is a transient service failure.
func IsRetryable(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.Retryable
}

// ClientConfig configures the AI extraction client.
type ClientConfig struct {
	APIKey        string
	BaseURL       string        // empty uses the default endpoint
	Model         string        // text extraction model
	VisionModel   string        // vision extraction model
	MaxChunkChars int           // per-call text budget
	ChunkDelay    time.Duration // pause between sequential chunk calls
	Temperature   float32
}

// Client calls an OpenAI-compatible API for vendor extraction.
type Client struct {
	api   *openai.Client
	cfg   ClientConfig
	stats *CallStats
	log   *slog.Logger
}

func NewClient(cfg ClientConfig, log *slog.Logger) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = openai.GPT4o
	}
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = 12000
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		cfg:   cfg,
		stats: NewCallStats(time.Hour),
		log:   log,
	}
}

// Stats returns a snapshot of recent call latencies.
func (c *Client) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

// Model reports the configured text extraction model.
func (c *Client) Model() string {
	return c.cfg.Model
}

// ExtractBlock sends one segmented block to the service and expects a single
// JSON object under the field contract.
func (c *Client) ExtractBlock(ctx context.Context, block, instructions string) (vendor.Record, error) {
	content, err := c.chat(ctx, "block", c.cfg.Model, buildPrompt(blockPrompt, instructions, block), true)
	if err != nil {
		return vendor.Record{}, err
	}
	records, err := decodeRecords(content)
	if err != nil {
		return vendor.Record{}, err
	}
	if len(records) == 0 {
		return vendor.Record{}, fmt.Errorf("empty record array in block response")
	}
	rec := records[0]
	rec.SourceText = block
	return rec, nil
}

// ExtractText sends free-form document text to the service, chunking it to
// the per-call budget. Chunks run strictly sequentially with a delay between
// calls; results from completed chunks are retained and returned even when a
// later chunk fails or the context is cancelled, since each chunk's output
// is independently valid.
func (c *Client) ExtractText(ctx context.Context, text, instructions string) ([]vendor.Record, error) {
	chunks := splitBudget(text, c.cfg.MaxChunkChars)
	if len(chunks) > 1 {
		c.log.Debug("text split for extraction", "chunks", len(chunks), "chars", len(text))
	}
	var out []vendor.Record

	for i, chunk := range chunks {
		if i > 0 && c.cfg.ChunkDelay > 0 {
			select {
			case <-time.After(c.cfg.ChunkDelay):
			case <-ctx.Done():
				return out, ctx.Err()
			}
		}

		content, err := c.chat(ctx, "text", c.cfg.Model, buildPrompt(batchPrompt, instructions, chunk), false)
		if err != nil {
			return out, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		records, err := decodeRecords(content)
		if err != nil {
			return out, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		out = append(out, records...)
	}
	return out, nil
}

// ExtractFromImage sends a page image to the vision model. A parseable JSON
// array comes back as pre-extracted records; anything else is returned as
// raw transcribed text for the normal segmentation path.
func (c *Client) ExtractFromImage(ctx context.Context, image []byte, instructions string) ([]vendor.Record, string, error) {
	prompt := visionPrompt
	if strings.TrimSpace(instructions) != "" {
		prompt += "\n\nAdditional caller context: " + strings.TrimSpace(instructions)
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.VisionModel,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    "data:image/png;base64," + base64.StdEncoding.EncodeToString(image),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	c.stats.Record("vision", time.Since(start).Milliseconds())
	if err != nil {
		return nil, "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, "", &ServiceError{Message: "empty vision response"}
	}

	content := resp.Choices[0].Message.Content
	if records, err := decodeRecords(content); err == nil && len(records) > 0 {
		return records, "", nil
	}
	return nil, stripCodeFence(content), nil
}

// chat runs a single text completion and returns the raw message content.
func (c *Client) chat(ctx context.Context, kind, model, prompt string, jsonObject bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: c.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if jsonObject {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	c.stats.Record(kind, time.Since(start).Milliseconds())
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Message: "no choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps transport/API errors onto ServiceError, marking rate limits
// and server-side failures retryable.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ServiceError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Retryable:  apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500,
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ServiceError{Message: err.Error(), Retryable: true}
}
