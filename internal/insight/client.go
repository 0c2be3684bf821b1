// Package insight asks a Gemini model for a written analysis of a set of
// tour records. Every failure is returned as a *domain.InsightError.
package insight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

const temperature = 0.7

// Generator is the slice of *genai.Models the client needs.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config configures a Client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client produces insights. A Client built without an API key is valid and
// reports missing-credentials on every call.
type Client struct {
	gen     Generator
	model   string
	timeout time.Duration
	log     *slog.Logger
}

// New builds a Client backed by the Gemini API.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return NewWithGenerator(nil, cfg, log), nil
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("insight.New: %w", err)
	}
	return NewWithGenerator(gc.Models, cfg, log), nil
}

// NewWithGenerator builds a Client over gen. A nil gen means no credentials.
func NewWithGenerator(gen Generator, cfg Config, log *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{gen: gen, model: cfg.Model, timeout: cfg.Timeout, log: log}
}

// Configured reports whether the client holds credentials.
func (c *Client) Configured() bool { return c.gen != nil }

// Analyze returns the model's report on records, written in lang.
func (c *Client) Analyze(ctx context.Context, records []domain.TourRecord, lang domain.Language) (string, error) {
	if len(records) == 0 {
		return "", &domain.InsightError{Kind: domain.InsightNoData}
	}
	if c.gen == nil {
		return "", &domain.InsightError{Kind: domain.InsightMissingCredentials}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.gen.GenerateContent(ctx, c.model,
		genai.Text(BuildPrompt(records, lang)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](temperature),
		},
	)
	if err != nil {
		kind := Classify(err)
		c.log.Warn("insight request failed", "kind", kind, "model", c.model, "error", err)
		return "", &domain.InsightError{Kind: kind, Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &domain.InsightError{Kind: domain.InsightTransient, Err: errors.New("empty response")}
	}
	return text, nil
}

// Classify maps a Gemini client error to an InsightKind. Anything that is
// not recognisably a credential or quota problem is transient.
func Classify(err error) domain.InsightKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.InsightTransient
	}

	var (
		code   int
		status string
		detail = err.Error()
	)
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, status = apiErr.Code, apiErr.Status
		detail += fmt.Sprint(apiErr.Details)
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code, status = apiErrPtr.Code, apiErrPtr.Status
		detail += fmt.Sprint(apiErrPtr.Details)
	}
	lower := strings.ToLower(detail)

	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		status == "UNAUTHENTICATED", status == "PERMISSION_DENIED",
		strings.Contains(detail, "API_KEY_INVALID"), strings.Contains(lower, "api key not valid"):
		return domain.InsightInvalidCredentials
	case code == http.StatusTooManyRequests, status == "RESOURCE_EXHAUSTED",
		strings.Contains(lower, "quota"):
		return domain.InsightQuotaExceeded
	default:
		return domain.InsightTransient
	}
}
