// Package tools holds the capability registry: every operation the
// conversational modes may request, described well enough for a model to
// select and argue with it.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/mudasirshah/portfolio-agent/internal/domain"
	"github.com/mudasirshah/portfolio-agent/internal/observability"
)

// ToolContext brings call metadata to the tool.
type ToolContext struct {
	SessionID string
	RequestID string
}

// Descriptor is the model-facing declaration of a tool. InputSchema is a
// JSON-schema object; the selection model reasons over it directly.
type Descriptor struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// Tool represents a capability an agent mode can invoke. Call returns the
// serialized result payload; failures the model should see as data belong in
// the payload, Go errors are reserved for genuine faults.
type Tool interface {
	Descriptor() Descriptor
	Call(ctx context.Context, tctx ToolContext, input map[string]any) (string, error)
}

// Registry is the closed set of registered tools, keyed by name.
// Read-mostly after startup.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Descriptor().Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Descriptors returns declarations for the named tools, in the order given.
// Names without a registration are skipped; a mode may bind a tool that a
// degraded gateway never provided.
func (r *Registry) Descriptors(names []string) []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		if t, ok := r.tools[name]; ok {
			out = append(out, t.Descriptor())
		}
	}
	return out
}

// Execute runs one requested invocation and never returns a Go error: an
// unknown name or a failing handler becomes a structured error result the
// mode handler folds back into the conversation.
func (r *Registry) Execute(ctx context.Context, tctx ToolContext, call *domain.ToolCall) *domain.ToolResult {
	log := observability.LoggerFromContext(ctx).With("tool", call.Name)
	start := time.Now()

	tool, ok := r.Get(call.Name)
	if !ok {
		log.Warn("tool not found")
		return &domain.ToolResult{
			ID:        call.ID,
			Name:      call.Name,
			Content:   ErrorPayload(fmt.Sprintf("capability %q is not available", call.Name)),
			IsError:   true,
			LatencyMS: latencyMS(start),
		}
	}

	out, err := tool.Call(ctx, tctx, call.Args)
	if err != nil {
		log.Error("tool call failed", "error", err)
		return &domain.ToolResult{
			ID:        call.ID,
			Name:      call.Name,
			Content:   ErrorPayload(err.Error()),
			IsError:   true,
			LatencyMS: latencyMS(start),
		}
	}

	elapsed := latencyMS(start)
	log.Info("tool call completed", "latency_ms", elapsed)
	return &domain.ToolResult{
		ID:        call.ID,
		Name:      call.Name,
		Content:   out,
		LatencyMS: elapsed,
	}
}

func latencyMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// ErrorPayload wraps a message into the structured result the model sees.
func ErrorPayload(msg string) string {
	raw, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return `{"error":"internal"}`
	}
	return string(raw)
}

// SchemaFor reflects a typed argument struct into a JSON-schema object.
// Descriptions come from `jsonschema:"description=..."` tags; a field is
// optional when its json tag carries omitempty.
func SchemaFor(v any) map[string]any {
	reflector := &jsonschema.Reflector{
		Anonymous:                 true,
		DoNotReference:            true,
		AllowAdditionalProperties: false,
	}
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"type": "object"}
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}
