// Package llm defines the language-model boundary for the portfolio agent.
// Providers translate the neutral chat types to their own wire format.
package llm

import "context"

// Role represents a message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason indicates why the model stopped generating.
type StopReason string

const (
	StopEndTurn   StopReason = "end_turn"
	StopMaxTokens StopReason = "max_tokens"
	StopToolUse   StopReason = "tool_use"
)

// Message is a single message in a conversation.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolResult *ToolResult
}

// ToolDefinition describes a tool offered to the model. InputSchema is a
// JSON-schema object; the model reasons over it directly, so descriptions
// matter as much as types.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolCall is the model requesting a tool invocation.
type ToolCall struct {
	ID    string
	Name  string
	Input map[string]any
}

// ToolResult carries a tool's output back to the model.
type ToolResult struct {
	ToolUseID string
	Name      string
	Content   string
	IsError   bool
}

// ChatRequest contains parameters for one model call.
type ChatRequest struct {
	Model       string
	System      string
	Messages    []Message
	Tools       []ToolDefinition
	MaxTokens   int
	Temperature *float64
}

// ChatResponse is the model's reply: final text, tool calls, or both.
type ChatResponse struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason StopReason
}

// Client is the interface all model providers implement.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
