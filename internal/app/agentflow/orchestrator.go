package agentflow

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
	"github.com/mudasirshah/portfolio-agent/internal/observability"
)

const (
	// At most one invocation is outstanding at a time; the loop bound keeps
	// a confused model from ping-ponging tools forever.
	maxToolIterations = 3

	historyWindow = 40

	configErrorReply = "Error: the language model API key is not configured. " +
		"Please set PORTFOLIO_API_KEY (or GROQ_API_KEY) in the environment."

	internalErrorReply = "Something went wrong on my end. Please try again in a moment."
)

// Orchestrator wires the router, the mode handlers, and the execution step
// into one request/response cycle.
type Orchestrator struct {
	store    domain.SessionStore
	registry *tools.Registry
	router   *Router
	handlers map[domain.Mode]ModeHandler

	apiKeyMissing bool
	now           func() time.Time
}

func NewOrchestrator(
	store domain.SessionStore,
	registry *tools.Registry,
	router *Router,
	handlers []ModeHandler,
	apiKeyMissing bool,
) *Orchestrator {
	byMode := make(map[domain.Mode]ModeHandler, len(handlers))
	for _, h := range handlers {
		byMode[h.Mode()] = h
	}
	return &Orchestrator{
		store:         store,
		registry:      registry,
		router:        router,
		handlers:      byMode,
		apiKeyMissing: apiKeyMissing,
		now:           time.Now,
	}
}

// Run processes the session's latest user turn and produces the assistant
// reply plus the diagnostic trace. Failures never escape: every error path
// collapses into a readable reply with detail in the trace.
func (o *Orchestrator) Run(ctx context.Context, sessionID domain.SessionID) (reply string, trace domain.Trace) {
	log := observability.LoggerFromContext(ctx)
	start := o.now()

	defer func() {
		trace.TotalLatencyMS = float64(time.Since(start).Microseconds()) / 1000.0
		if r := recover(); r != nil {
			log.Error("orchestrator panic", "panic", r)
			reply = internalErrorReply
			trace.IntentDetected = domain.IntentError
			trace.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	// Catch a missing credential before any external call is attempted.
	if o.apiKeyMissing {
		trace.IntentDetected = domain.IntentError
		trace.Error = "llm api key not configured"
		return configErrorReply, trace
	}

	turns, err := o.store.GetTurns(sessionID, historyWindow)
	if err != nil {
		log.Error("orchestrator: load history failed", "error", err)
		trace.IntentDetected = domain.IntentError
		trace.Error = err.Error()
		return internalErrorReply, trace
	}

	mode := o.router.Route(ctx, turns)
	trace.ActiveAgent = string(mode)

	handler, ok := o.handlers[mode]
	if !ok {
		trace.IntentDetected = domain.IntentError
		trace.Error = fmt.Sprintf("no handler for mode %q", mode)
		return internalErrorReply, trace
	}

	// handler → invocation → result → same handler again. No mode switch
	// mid-invocation.
	for i := 0; i <= maxToolIterations; i++ {
		res, err := handler.Respond(ctx, turns)
		if err != nil {
			log.Error("orchestrator: mode handler failed", "mode", mode, "error", err)
			trace.IntentDetected = domain.IntentError
			trace.Error = err.Error()
			return internalErrorReply, trace
		}

		if res.ToolCall == nil {
			if trace.IntentDetected == "" {
				trace.IntentDetected = domain.IntentDirectAnswer
			}
			if res.Reply == "" {
				trace.IntentDetected = domain.IntentUnknown
				return internalErrorReply, trace
			}
			return res.Reply, trace
		}

		call := res.ToolCall
		trace.IntentDetected = domain.IntentToolExecution
		trace.ToolSelected = call.Name
		trace.ToolArgs = call.Args

		if i == maxToolIterations {
			log.Warn("orchestrator: tool iteration budget exhausted", "tool", call.Name)
			trace.Error = "tool iteration budget exhausted"
			return internalErrorReply, trace
		}

		var result *domain.ToolResult
		if !slices.Contains(res.Allowed, call.Name) {
			result = &domain.ToolResult{
				ID:      call.ID,
				Name:    call.Name,
				Content: tools.ErrorPayload(fmt.Sprintf("capability %q is not available in this mode", call.Name)),
				IsError: true,
			}
		} else {
			result = o.registry.Execute(ctx, tools.ToolContext{
				SessionID: string(sessionID),
			}, call)
		}
		trace.ToolLatencyMS = result.LatencyMS

		turns = o.appendToolExchange(ctx, sessionID, turns, call, result)
	}

	trace.IntentDetected = domain.IntentUnknown
	return internalErrorReply, trace
}

// appendToolExchange records the invocation request and its result in the
// session timeline so the handler's follow-up sees both.
func (o *Orchestrator) appendToolExchange(
	ctx context.Context,
	sessionID domain.SessionID,
	turns []*domain.Turn,
	call *domain.ToolCall,
	result *domain.ToolResult,
) []*domain.Turn {
	log := observability.LoggerFromContext(ctx)
	now := o.now()

	callTurn := &domain.Turn{
		ID:        domain.TurnID(uuid.NewString()),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		CreatedAt: now,
		ToolCall:  call,
	}
	// Stores order history by created_at and break ties by document ID, so
	// the result must carry a strictly later timestamp than the call that
	// produced it or a reload can swap the pair.
	resultTurn := &domain.Turn{
		ID:         domain.TurnID(uuid.NewString()),
		SessionID:  sessionID,
		Role:       domain.RoleTool,
		CreatedAt:  now.Add(time.Millisecond),
		ToolResult: result,
	}

	for _, t := range []*domain.Turn{callTurn, resultTurn} {
		if err := o.store.AppendTurn(t); err != nil {
			log.Error("orchestrator: append turn failed", "error", err)
		}
		turns = append(turns, t)
	}
	return turns
}
