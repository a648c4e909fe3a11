package agentflow

import (
	"context"

	"github.com/mudasirshah/portfolio-agent/internal/adapters/llm"
	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
)

// InformationalHandler answers questions about the engineer's background,
// projects, and availability through the informational capability subset.
type InformationalHandler struct {
	llm      llm.Client
	registry *tools.Registry
	model    string
}

func NewInformationalHandler(client llm.Client, registry *tools.Registry, model string) *InformationalHandler {
	return &InformationalHandler{llm: client, registry: registry, model: model}
}

func (h *InformationalHandler) Mode() domain.Mode {
	return domain.ModeInformational
}

func (h *InformationalHandler) Respond(ctx context.Context, turns []*domain.Turn) (*StepResult, error) {
	bound := tools.InformationalToolNames()

	resp, err := h.llm.Chat(ctx, llm.ChatRequest{
		Model:     h.model,
		System:    informationalDirective,
		Messages:  toMessages(turns),
		Tools:     toToolDefinitions(h.registry.Descriptors(bound)),
		MaxTokens: 1024,
	})
	if err != nil {
		return nil, err
	}

	result := &StepResult{Reply: resp.Content, Allowed: bound}
	if len(resp.ToolCalls) > 0 {
		// One invocation at a time; extra requests are dropped.
		tc := resp.ToolCalls[0]
		result.Reply = ""
		result.ToolCall = &domain.ToolCall{ID: tc.ID, Name: tc.Name, Args: tc.Input}
	}
	return result, nil
}
