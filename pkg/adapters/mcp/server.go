package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/clearance"
	"github.com/aretw0/clearance/internal/logging"
	"github.com/aretw0/clearance/internal/sanitize"
	"github.com/aretw0/clearance/pkg/domain"
	"github.com/aretw0/clearance/pkg/eligibility"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// GraphURI is the resource holding the Mermaid diagram of the intake flow.
const GraphURI = "clearance://graph"

// FlowResponse is the structured result of the flow tools.
type FlowResponse struct {
	SessionID         string                    `json:"session_id" jsonschema_description:"Session to pass to the next flow_advance call"`
	View              domain.View               `json:"view" jsonschema_description:"The prompt, quick replies and expected input type"`
	EligibilityResult *domain.EligibilityResult `json:"eligibility_result,omitempty" jsonschema_description:"Present when the turn reached the eligibility result"`
	ValidationError   string                    `json:"validation_error,omitempty" jsonschema_description:"Why the answer was not accepted"`
}

// ContextResponse carries the chat-collaborator summary of a result.
type ContextResponse struct {
	Context string `json:"context"`
}

// Engine defines what the MCP server needs from the intake core.
type Engine interface {
	State(ctx context.Context, sessionID string) (domain.View, error)
	Advance(ctx context.Context, sessionID string, input any) (*domain.Turn, error)
	Evaluate(data domain.CollectedData) *domain.EligibilityResult
	EligibilityContext(result *domain.EligibilityResult) string
	Graph(ctx context.Context, sessionID string) (string, error)
}

var _ Engine = (*clearance.Engine)(nil)

// Server wraps the engine and exposes it as an MCP server.
type Server struct {
	engine    Engine
	sanitizer *sanitize.Sanitizer
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for rejected input and SSE lifecycle messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sanitizer: sanitize.New(sanitize.DefaultMaxInputSize),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("clearance-mcp", strings.TrimSpace(clearance.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP server over SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("evaluate_eligibility",
		mcp.WithDescription("Classify a Texas record-clearing case from collected answers. "+
			"Dates accept YYYY, MM/YYYY, YYYY-MM or Month YYYY."),
		mcp.WithString("jurisdiction", mcp.Required(), mcp.Enum("TX", "FEDERAL", "OTHER")),
		mcp.WithBoolean("lifetime_bar", mcp.Description("Convicted of or on probation for a lifetime-barred offense")),
		mcp.WithString("offense_level", mcp.Enum("class_c", "misdemeanor", "felony")),
		mcp.WithBoolean("multiple_charges"),
		mcp.WithBoolean("any_conviction_from_arrest"),
		mcp.WithString("case_outcome", mcp.Enum("dismissed", "unfiled", "acquitted", "deferred", "convicted", "unsure")),
		mcp.WithString("arrest_date"),
		mcp.WithString("dismissed_category", mcp.Enum("standard", "fraud_financial", "deed_theft", "not_sure")),
		mcp.WithString("deferred_discharge_date"),
		mcp.WithString("deferred_misd_category", mcp.Enum("minor_nonviolent", "standard_or_unsure")),
		mcp.WithBoolean("deferred_banned_charge"),
		mcp.WithBoolean("intervening_offense"),
		mcp.WithBoolean("prior_history"),
		mcp.WithString("conviction_sentence_date"),
		mcp.WithString("first_name", mcp.Description("Used to personalize the reason text")),
		mcp.WithOutputSchema[domain.EligibilityResult](),
	), mcp.NewStructuredToolHandler(s.handleEvaluate))

	s.mcpServer.AddTool(mcp.NewTool("eligibility_context",
		mcp.WithDescription("Summarize an eligibility result as context for a chat assistant."),
		mcp.WithString("status", mcp.Required()),
		mcp.WithString("bucket"),
		mcp.WithString("pathway"),
		mcp.WithString("reason"),
		mcp.WithString("next_steps"),
		mcp.WithString("eligible_on_date"),
		mcp.WithString("disclaimer"),
		mcp.WithOutputSchema[ContextResponse](),
	), mcp.NewStructuredToolHandler(s.handleContext))

	s.mcpServer.AddTool(mcp.NewTool("flow_state",
		mcp.WithDescription("Render the current step of an intake session, creating it if needed. "+
			"Omit session_id to start a new session."),
		mcp.WithString("session_id"),
		mcp.WithOutputSchema[FlowResponse](),
	), mcp.NewStructuredToolHandler(s.handleFlowState))

	s.mcpServer.AddTool(mcp.NewTool("flow_advance",
		mcp.WithDescription("Answer the current step of an intake session. Use a quick-reply id or free text as input; "+
			"contact steps take a form object instead."),
		mcp.WithString("session_id", mcp.Required()),
		mcp.WithString("input"),
		mcp.WithObject("form", mcp.Description("Contact form with name, email and phone")),
		mcp.WithOutputSchema[FlowResponse](),
	), mcp.NewStructuredToolHandler(s.handleFlowAdvance))
}

func (s *Server) handleEvaluate(_ context.Context, _ mcp.CallToolRequest, data domain.CollectedData) (domain.EligibilityResult, error) {
	if field, ok := eligibility.NormalizeDates(&data); !ok {
		return domain.EligibilityResult{}, fmt.Errorf("invalid %s: use YYYY, MM/YYYY, or Month YYYY", field)
	}
	return *s.engine.Evaluate(data), nil
}

func (s *Server) handleContext(_ context.Context, _ mcp.CallToolRequest, result domain.EligibilityResult) (ContextResponse, error) {
	if result.Status == "" {
		return ContextResponse{}, errors.New("status is required")
	}
	return ContextResponse{Context: s.engine.EligibilityContext(&result)}, nil
}

type flowArgs struct {
	SessionID string              `json:"session_id"`
	Input     string              `json:"input"`
	Form      *domain.ContactForm `json:"form"`
}

func (s *Server) handleFlowState(ctx context.Context, _ mcp.CallToolRequest, args flowArgs) (FlowResponse, error) {
	if args.SessionID == "" {
		args.SessionID = uuid.NewString()
	}
	view, err := s.engine.State(ctx, args.SessionID)
	if err != nil {
		return FlowResponse{}, fmt.Errorf("flow state failed: %w", err)
	}
	return FlowResponse{SessionID: args.SessionID, View: view}, nil
}

func (s *Server) handleFlowAdvance(ctx context.Context, _ mcp.CallToolRequest, args flowArgs) (FlowResponse, error) {
	if args.SessionID == "" {
		return FlowResponse{}, errors.New("session_id is required")
	}

	var input any
	if args.Form != nil {
		form, err := s.cleanForm(*args.Form)
		if err != nil {
			return FlowResponse{}, s.rejected(args.SessionID, err)
		}
		input = form
	} else {
		clean, err := s.sanitizer.Answer(args.Input)
		if err != nil {
			return FlowResponse{}, s.rejected(args.SessionID, err)
		}
		input = clean
	}

	turn, err := s.engine.Advance(ctx, args.SessionID, input)
	if err != nil {
		return FlowResponse{}, fmt.Errorf("flow advance failed: %w", err)
	}
	return FlowResponse{
		SessionID:         args.SessionID,
		View:              turn.View,
		EligibilityResult: turn.EligibilityResult,
		ValidationError:   turn.ValidationMessage(),
	}, nil
}

func (s *Server) cleanForm(form domain.ContactForm) (domain.ContactForm, error) {
	for _, field := range []*string{&form.Name, &form.Email, &form.Phone} {
		clean, err := s.sanitizer.Text(*field)
		if err != nil {
			return domain.ContactForm{}, err
		}
		*field = clean
	}
	return form, nil
}

func (s *Server) rejected(sessionID string, err error) error {
	s.logger.Warn("MCP input rejected", "session_id", sessionID, "error", err)
	if errors.Is(err, sanitize.ErrSensitiveData) {
		return errors.New(sanitize.SensitiveDataMessage)
	}
	return fmt.Errorf("input rejected: %w", err)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(GraphURI, "Intake flow diagram",
		mcp.WithResourceDescription("Mermaid flowchart of the intake conversation"),
		mcp.WithMIMEType("text/plain"),
	), s.readGraph)
}

func (s *Server) readGraph(ctx context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	graph, err := s.engine.Graph(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      GraphURI,
			MIMEType: "text/plain",
			Text:     graph,
		},
	}, nil
}
