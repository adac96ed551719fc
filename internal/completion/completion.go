// Package completion provides the text-completion service used to generate
// each hat's turn. A Client sends one prompt and returns one completion; any
// failure is reported as an *errors.ServiceError. Clients make a single
// attempt and never retry.
package completion

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Iron-Ham/sixhats/internal/errors"
)

// Provider names accepted by New.
const (
	ProviderAnthropic = "anthropic"
	ProviderEcho      = "echo"
)

// Client turns a prompt into a completion.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Settings selects and configures a Client.
type Settings struct {
	Provider  string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	BaseURL   string
	APIKey    string
}

// New builds the client named by s.Provider. An empty provider means
// anthropic. The Anthropic client falls back to ANTHROPIC_API_KEY when
// s.APIKey is empty.
func New(s Settings) (Client, error) {
	switch s.Provider {
	case "", ProviderAnthropic:
		apiKey := s.APIKey
		if apiKey == "" {
			apiKey = os.Getenv(apiKeyEnv)
		}
		var opts []ClientOption
		if s.Model != "" {
			opts = append(opts, WithModel(s.Model))
		}
		if s.MaxTokens > 0 {
			opts = append(opts, WithMaxTokens(s.MaxTokens))
		}
		if s.Timeout > 0 {
			opts = append(opts, WithTimeout(s.Timeout))
		}
		if s.BaseURL != "" {
			opts = append(opts, WithBaseURL(s.BaseURL))
		}
		return NewAnthropicClient(apiKey, opts...)
	case ProviderEcho:
		return NewEchoClient(), nil
	default:
		return nil, errors.NewInvalidInputError(fmt.Sprintf("unknown completion provider %q", s.Provider)).
			WithField("completion.provider")
	}
}
