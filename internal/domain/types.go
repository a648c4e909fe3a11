package domain

import "time"

type SessionID string
type TurnID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Mode is the conversational strategy selected for a single turn.
type Mode string

const (
	ModeInformational Mode = "informational"
	ModeScheduling    Mode = "scheduling"
)

// Intent labels surfaced in the trace. The string forms are part of the
// response contract consumed by the web front-end, so they stay human-readable.
const (
	IntentToolExecution = "Tool Execution"
	IntentDirectAnswer  = "Direct Answer"
	IntentError         = "Error"
	IntentUnknown       = "Unknown"
)

type Timestamp = time.Time
