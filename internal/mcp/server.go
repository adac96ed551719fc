// Package mcp exposes Six Thinking Hats analysis to MCP clients over stdio.
package mcp

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Iron-Ham/sixhats/internal/dialogue"
	"github.com/Iron-Ham/sixhats/internal/hat"
	"github.com/Iron-Ham/sixhats/internal/logging"
)

// Recorder receives every finished session, e.g. the archive.
type Recorder interface {
	Save(ctx context.Context, res *dialogue.Result) error
}

// Server wraps the MCP SDK server and runs sessions on an Orchestrator.
type Server struct {
	MCPServer *sdkmcp.Server

	orch         *dialogue.Orchestrator
	recorder     Recorder
	defaultOrder []string
	dialogMode   bool
	logger       *logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRecorder saves every finished session through r.
func WithRecorder(r Recorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithDefaults sets the hat order and dialog mode used when a call leaves
// them out.
func WithDefaults(order []string, dialogMode bool) Option {
	return func(s *Server) {
		s.defaultOrder = order
		s.dialogMode = dialogMode
	}
}

// WithLogger sets the server logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates an MCP server with the analysis tools registered.
func NewServer(orch *dialogue.Orchestrator, version string, opts ...Option) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: "sixhats", Version: version},
			nil,
		),
		orch:         orch,
		defaultOrder: hat.Strings(hat.DefaultOrder),
		dialogMode:   true,
		logger:       logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until ctx is cancelled or the client leaves.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_topic",
		Description: "Run a Six Thinking Hats session on a topic. Each hat answers in turn; in dialog mode each answer responds to the previous one.",
	}, s.handleAnalyzeTopic)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_hats",
		Description: "List the six hats with their names and colors.",
	}, s.handleListHats)
}

// --- Tool input/output types ---

type analyzeTopicInput struct {
	Topic      string   `json:"topic" jsonschema:"the subject to analyze"`
	Hats       []string `json:"hats,omitempty" jsonschema:"hat order, any of blue, white, red, black, yellow, green; repeats allowed"`
	DialogMode *bool    `json:"dialog_mode,omitempty" jsonschema:"link each answer to the previous one (default true)"`
}

type messageOutput struct {
	ID         string `json:"id"`
	Hat        string `json:"hat"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	ResponseTo string `json:"response_to,omitempty"`
}

type analyzeTopicOutput struct {
	SessionID    string          `json:"session_id"`
	Status       string          `json:"status"`
	Error        string          `json:"error,omitempty"`
	Conversation []messageOutput `json:"conversation"`
	Summary      string          `json:"summary"`
}

type listHatsInput struct{}

type hatOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type listHatsOutput struct {
	Hats []hatOutput `json:"hats"`
}

// --- Tool handlers ---

func (s *Server) handleAnalyzeTopic(ctx context.Context, _ *sdkmcp.CallToolRequest, input analyzeTopicInput) (*sdkmcp.CallToolResult, analyzeTopicOutput, error) {
	hats := input.Hats
	if hats == nil {
		hats = s.defaultOrder
	}
	dialogMode := s.dialogMode
	if input.DialogMode != nil {
		dialogMode = *input.DialogMode
	}

	res, err := s.orch.Analyze(ctx, dialogue.Request{
		Topic:      input.Topic,
		Hats:       hats,
		DialogMode: dialogMode,
	})
	if err != nil {
		return nil, analyzeTopicOutput{}, err
	}

	if s.recorder != nil {
		if err := s.recorder.Save(context.WithoutCancel(ctx), res); err != nil {
			s.logger.WithSession(res.SessionID).Warn("archive save failed", "error", err.Error())
		}
	}

	return nil, toAnalyzeOutput(res), nil
}

func (s *Server) handleListHats(_ context.Context, _ *sdkmcp.CallToolRequest, _ listHatsInput) (*sdkmcp.CallToolResult, listHatsOutput, error) {
	personas := s.orch.Personas()
	out := listHatsOutput{Hats: make([]hatOutput, 0, len(hat.DefaultOrder))}
	for _, id := range hat.DefaultOrder {
		p, _ := personas.Get(id)
		out.Hats = append(out.Hats, hatOutput{ID: string(p.ID), Name: p.Name, Color: p.Color})
	}
	return nil, out, nil
}

func toAnalyzeOutput(res *dialogue.Result) analyzeTopicOutput {
	out := analyzeTopicOutput{
		SessionID:    res.SessionID,
		Status:       string(res.Status),
		Error:        res.Error,
		Conversation: make([]messageOutput, 0, len(res.Conversation)),
		Summary:      hat.NoSummary,
	}
	for _, m := range res.Conversation {
		out.Conversation = append(out.Conversation, messageOutput{
			ID:         m.ID,
			Hat:        string(m.Hat),
			Content:    m.Content,
			Timestamp:  m.Timestamp.Format(time.RFC3339Nano),
			ResponseTo: m.RespondsTo(),
		})
		if m.Hat == hat.Blue {
			out.Summary = m.Content
		}
	}
	return out
}
