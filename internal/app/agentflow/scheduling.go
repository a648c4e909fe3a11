package agentflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/mudasirshah/portfolio-agent/internal/adapters/llm"
	"github.com/mudasirshah/portfolio-agent/internal/adapters/mcp"
	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
	"github.com/mudasirshah/portfolio-agent/internal/observability"
)

// CalendarGateway is the slice of the MCP gateway the handler depends on.
type CalendarGateway interface {
	Available() bool
}

// SchedulingHandler runs the booking dialogue. The dialogue state is derived
// from history every turn; the booking tool is bound only once the visitor
// has confirmed the restated time, so an eager model cannot book early.
type SchedulingHandler struct {
	llm      llm.Client
	registry *tools.Registry
	gateway  CalendarGateway
	model    string

	// calendarTools is the allow-listed read-only subset registered after
	// gateway discovery; empty when the gateway degraded.
	calendarTools []string
}

func NewSchedulingHandler(client llm.Client, registry *tools.Registry, gateway CalendarGateway, model string, calendarTools []string) *SchedulingHandler {
	readOnly := make([]string, 0, len(calendarTools))
	for _, name := range calendarTools {
		if name != mcp.ToolBookMeeting {
			readOnly = append(readOnly, name)
		}
	}
	return &SchedulingHandler{
		llm:           client,
		registry:      registry,
		gateway:       gateway,
		model:         model,
		calendarTools: readOnly,
	}
}

func (h *SchedulingHandler) Mode() domain.Mode {
	return domain.ModeScheduling
}

func (h *SchedulingHandler) Respond(ctx context.Context, turns []*domain.Turn) (*StepResult, error) {
	log := observability.LoggerFromContext(ctx)

	if h.gateway == nil || !h.gateway.Available() {
		log.Info("scheduling: gateway unavailable, replying with degradation notice")
		return &StepResult{Reply: schedulingUnavailableReply}, nil
	}

	details := ExtractMeetingDetails(turns)
	state := details.State()
	log.Info("scheduling: dialogue state", "state", state.String())

	bound := append([]string(nil), h.calendarTools...)
	if state == StateConfirmed {
		bound = append(bound, mcp.ToolBookMeeting)
	}

	resp, err := h.llm.Chat(ctx, llm.ChatRequest{
		Model:     h.model,
		System:    schedulingDirective + stateInstruction(details, state),
		Messages:  toMessages(turns),
		Tools:     toToolDefinitions(h.registry.Descriptors(bound)),
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, err
	}

	result := &StepResult{Reply: resp.Content, Allowed: bound}
	if len(resp.ToolCalls) > 0 {
		tc := resp.ToolCalls[0]
		result.Reply = ""
		result.ToolCall = &domain.ToolCall{ID: tc.ID, Name: tc.Name, Args: tc.Input}
	}
	return result, nil
}

// stateInstruction appends the per-turn situation to the base directive so
// the model asks for exactly the next missing field.
func stateInstruction(d MeetingDetails, state MeetingState) string {
	var b strings.Builder
	b.WriteString("\nCurrent booking status:\n")

	write := func(label, value string) {
		if value == "" {
			value = "(unknown)"
		}
		fmt.Fprintf(&b, "- %s: %s\n", label, value)
	}
	write("visitor name", d.Name)
	write("visitor email", d.Email)
	write("requested time", d.TimeExpr)

	switch state {
	case StateNoDetails:
		b.WriteString("\nNext step: ask for the visitor's name. Nothing else.\n")
	case StateHasName:
		b.WriteString("\nNext step: ask for the visitor's email address. Nothing else.\n")
	case StateHasNameEmail:
		b.WriteString("\nNext step: ask what date and time they'd like to meet. Nothing else.\n")
	case StateHasAllDetails:
		b.WriteString("\nNext step: restate the resolved date and time and ask the visitor to confirm. Do not book yet.\n")
	case StateConfirmed:
		b.WriteString("\nThe visitor has confirmed. Book the meeting now with the booking tool, then tell them it's done.\n")
	}

	return b.String()
}
