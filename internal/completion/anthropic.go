package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Iron-Ham/sixhats/internal/errors"
)

const (
	// DefaultBaseURL is the Anthropic Messages API endpoint.
	DefaultBaseURL = "https://api.anthropic.com/v1/messages"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-3-5-sonnet-20241022"

	// DefaultMaxTokens caps the length of each completion.
	DefaultMaxTokens = 1024

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 60 * time.Second

	apiKeyEnv        = "ANTHROPIC_API_KEY"
	anthropicVersion = "2023-06-01"

	// maxDiagnosticLen bounds how much of an error body is kept.
	maxDiagnosticLen = 512
)

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	apiKey     string
	model      string
	maxTokens  int
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures an AnthropicClient.
type ClientOption func(*AnthropicClient)

// WithModel sets the model to use.
func WithModel(model string) ClientOption {
	return func(c *AnthropicClient) {
		c.model = model
	}
}

// WithMaxTokens sets the completion length limit.
func WithMaxTokens(n int) ClientOption {
	return func(c *AnthropicClient) {
		c.maxTokens = n
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *AnthropicClient) {
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL points the client at a different Messages endpoint.
func WithBaseURL(url string) ClientOption {
	return func(c *AnthropicClient) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *AnthropicClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewAnthropicClient creates a client authenticated with apiKey. A missing key
// is an input error, since no request could ever succeed.
func NewAnthropicClient(apiKey string, opts ...ClientOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.NewInvalidInputError(apiKeyEnv + " is not set and completion.api_key is empty").
			WithField("completion.api_key").
			WithCause(errors.ErrMissingCredentials)
	}

	c := &AnthropicClient{
		apiKey:    apiKey,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		baseURL:   DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Model returns the configured model name.
func (c *AnthropicClient) Model() string {
	return c.model
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Complete sends prompt as a single user message and returns the text of the
// first content block.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.NewServiceError("marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBytes))
	if err != nil {
		return "", errors.NewServiceError("create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewServiceError("send request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewServiceError("read response", err).WithStatusCode(resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewServiceError("api request", nil).
			WithStatusCode(resp.StatusCode).
			WithDiagnostic(diagnostic(body))
	}

	var respData messagesResponse
	if err := json.Unmarshal(body, &respData); err != nil {
		return "", errors.NewServiceError("unmarshal response", err).WithStatusCode(resp.StatusCode)
	}

	if respData.Error != nil {
		return "", errors.NewServiceError("api request", nil).
			WithStatusCode(resp.StatusCode).
			WithDiagnostic(respData.Error.Message)
	}

	if len(respData.Content) == 0 {
		return "", errors.NewServiceError("decode response", nil).WithDiagnostic("empty response from API")
	}

	text := strings.TrimSpace(respData.Content[0].Text)
	if text == "" {
		return "", errors.NewServiceError("decode response", nil).WithDiagnostic("API returned empty text")
	}
	return text, nil
}

// diagnostic extracts the API error message from body when it has one and
// otherwise returns the raw body, truncated.
func diagnostic(body []byte) string {
	var respData messagesResponse
	if err := json.Unmarshal(body, &respData); err == nil && respData.Error != nil && respData.Error.Message != "" {
		return respData.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxDiagnosticLen {
		// Cut on a rune boundary so the diagnostic stays valid UTF-8.
		n := maxDiagnosticLen
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	return s
}
