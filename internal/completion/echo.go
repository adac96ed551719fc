package completion

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/Iron-Ham/sixhats/internal/errors"
)

// EchoClient is an offline Client that answers without any network access.
// It is used for dry runs and demos: each completion names the turn number
// and quotes the first line of the prompt.
type EchoClient struct {
	calls atomic.Int64
}

// NewEchoClient creates an EchoClient.
func NewEchoClient() *EchoClient {
	return &EchoClient{}
}

// Complete returns a deterministic reply derived from prompt.
func (c *EchoClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewServiceError("echo", err)
	}
	n := c.calls.Add(1)

	first, _, _ := strings.Cut(strings.TrimSpace(prompt), "\n")
	if len(first) > 80 {
		first = first[:80]
	}
	return fmt.Sprintf("Echo reply %d to: %s", n, first), nil
}

// Calls returns how many completions have been served.
func (c *EchoClient) Calls() int64 {
	return c.calls.Load()
}
