package domain

// ToolCall is a capability invocation requested by the assistant.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult is the outcome of executing a ToolCall. Failures are carried
// as data (IsError + Content), never as a Go error past the execution step.
type ToolResult struct {
	// ID echoes the originating ToolCall.ID so providers can pair them.
	ID        string
	Name      string
	Content   string
	IsError   bool
	LatencyMS float64
}

// Turn represents one message in a session's timeline. A turn is immutable
// once appended and owned exclusively by its session.
type Turn struct {
	ID        TurnID
	SessionID SessionID
	Role      Role
	Text      string
	CreatedAt Timestamp

	// Set when Role is RoleAssistant and the assistant requested a tool
	// instead of answering. A turn carries either Text or ToolCall, not both.
	ToolCall *ToolCall

	// Set when Role is RoleTool.
	ToolResult *ToolResult
}

// Session is one conversation between a visitor and the agent.
type Session struct {
	ID        SessionID
	CreatedAt Timestamp
	UpdatedAt Timestamp
}

// Trace is the diagnostic record returned alongside every chat response.
// It is rebuilt from scratch on each request.
type Trace struct {
	ActiveAgent    string         `json:"active_agent,omitempty"`
	IntentDetected string         `json:"intent_detected,omitempty"`
	ToolSelected   string         `json:"tool_selected,omitempty"`
	ToolArgs       map[string]any `json:"tool_args,omitempty"`
	ToolLatencyMS  float64        `json:"tool_latency_ms,omitempty"`
	TotalLatencyMS float64        `json:"total_latency_ms,omitempty"`
	Error          string         `json:"error,omitempty"`
}
