package agentflow

import (
	"context"

	"github.com/mudasirshah/portfolio-agent/internal/adapters/llm"
	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
)

// StepResult is one mode handler step: either a final reply or a single
// capability invocation request, never both.
type StepResult struct {
	Reply    string
	ToolCall *domain.ToolCall

	// Allowed is the capability subset the handler bound for this turn.
	// The orchestrator refuses invocations outside it.
	Allowed []string
}

// ModeHandler produces the next assistant step for its conversational mode.
type ModeHandler interface {
	Mode() domain.Mode
	Respond(ctx context.Context, turns []*domain.Turn) (*StepResult, error)
}

// toMessages converts session turns into the provider-neutral chat shape.
// Tool-result turns ride along so the handler can fold outcomes into its
// follow-up reply.
func toMessages(turns []*domain.Turn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: t.Text})

		case domain.RoleAssistant:
			m := llm.Message{Role: llm.RoleAssistant, Content: t.Text}
			if t.ToolCall != nil {
				m.ToolCalls = []llm.ToolCall{{
					ID:    t.ToolCall.ID,
					Name:  t.ToolCall.Name,
					Input: t.ToolCall.Args,
				}}
			}
			msgs = append(msgs, m)

		case domain.RoleTool:
			if t.ToolResult == nil {
				continue
			}
			useID := t.ToolResult.ID
			if useID == "" {
				useID = t.ToolResult.Name
			}
			msgs = append(msgs, llm.Message{
				Role: llm.RoleUser,
				ToolResult: &llm.ToolResult{
					ToolUseID: useID,
					Name:      t.ToolResult.Name,
					Content:   t.ToolResult.Content,
					IsError:   t.ToolResult.IsError,
				},
			})
		}
	}
	return msgs
}

func toToolDefinitions(descs []tools.Descriptor) []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(descs))
	for _, d := range descs {
		defs = append(defs, llm.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}
	return defs
}
