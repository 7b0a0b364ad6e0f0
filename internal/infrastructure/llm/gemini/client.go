package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/kirillkom/earningscall-analyzer/internal/core/domain"
	"github.com/kirillkom/earningscall-analyzer/internal/infrastructure/resilience"
)

const (
	DefaultModel = "gemini-2.5-flash"

	generateOperation = "gemini_generate"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds a single call at the transport; zero leaves it
	// unbounded.
	Timeout time.Duration
}

type Client struct {
	client   *genai.Client
	model    string
	executor *resilience.Executor
}

// New builds a Gemini-backed analysis client. A missing API key is reported
// as ErrCredential without touching the network. executor may be nil.
func New(ctx context.Context, cfg Config, executor *resilience.Executor) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, domain.WrapError(domain.ErrCredential, "create gemini client", errors.New("api key is not set"))
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(cfg.BaseURL, "/") + "/"}
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCredential, "create gemini client", err)
	}

	return &Client{
		client:   client,
		model:    model,
		executor: executor,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// Analyze sends the prompt once and returns the model's text verbatim.
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	var text string
	call := func(callCtx context.Context) error {
		resp, err := c.client.Models.GenerateContent(callCtx, c.model, genai.Text(req.Prompt), nil)
		if err != nil {
			return err
		}
		out, err := responseText(resp)
		if err != nil {
			return err
		}
		text = out
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, generateOperation, call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapGeminiError(generateOperation, err)
	}
	return text, nil
}

var errNoCandidates = errors.New("gemini returned no candidates")

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errNoCandidates
	}
	return resp.Text(), nil
}
