package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1"

	generateOperation = "ollama_generate"
)

type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	// ContextTokens sets num_ctx; zero keeps the server default, which is
	// usually too small for a full transcript.
	ContextTokens int
}

// Client talks to a self-hosted Ollama server. It needs no credential.
type Client struct {
	baseURL       string
	model         string
	contextTokens int
	httpClient    *http.Client
	executor      *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL:       baseURL,
		model:         model,
		contextTokens: cfg.ContextTokens,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		executor:      executor,
	}
}

func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	NumCtx int `json:"num_ctx,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

var errEmptyResponse = errors.New("ollama returned an empty response")

// Analyze sends the prompt once, non-streaming, and returns the text verbatim.
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
	}
	if c.contextTokens > 0 {
		payload.Options = &generateOptions{NumCtx: c.contextTokens}
	}

	var text string
	call := func(callCtx context.Context) error {
		var out generateResponse
		if err := c.postJSON(callCtx, "/api/generate", payload, &out, "generate"); err != nil {
			return err
		}
		if strings.TrimSpace(out.Response) == "" {
			return errEmptyResponse
		}
		text = out.Response
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, generateOperation, call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapOllamaError(generateOperation, err)
	}
	return text, nil
}
