// Package mcp mediates access to the external calendar capability provider
// over the Model Context Protocol. The provider runs as a side process; its
// absence degrades the scheduling mode, never the whole service.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/singleflight"

	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
	"github.com/mudasirshah/portfolio-agent/internal/observability"
)

// Config holds the connection settings for the calendar MCP server.
type Config struct {
	Command         string
	Args            []string
	CredentialsPath string
	Timeout         time.Duration

	// Transport overrides the stdio command transport. Tests use it to wire
	// the gateway to an in-process provider.
	Transport mcpsdk.Transport
}

// Only read-only list operations are offered to the model directly. The
// mutating create-event stays behind the book_meeting proxy, which also keeps
// the schema surface small enough for the selection model.
var allowedTools = map[string]tools.Descriptor{
	"list-calendars": {
		Name:        "list-calendars",
		Description: "Lists the calendars the agent's owner has access to.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	},
	"list-events": {
		Name:        "list-events",
		Description: "Lists upcoming events on a calendar within an optional time window.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"calendarId": map[string]any{"type": "string", "description": "Calendar identifier, usually 'primary'."},
				"timeMin":    map[string]any{"type": "string", "description": "Earliest event time, RFC3339."},
				"timeMax":    map[string]any{"type": "string", "description": "Latest event time, RFC3339."},
			},
		},
	},
}

// Gateway holds one long-lived connection to the calendar provider.
type Gateway struct {
	cfg Config

	group singleflight.Group

	mu        sync.RWMutex
	session   *mcpsdk.ClientSession
	available []string
}

func NewGateway(cfg Config) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Gateway{cfg: cfg}
}

// Discover connects to the provider and returns the allow-listed capability
// set. Missing credentials, a failed handshake, or a timeout all yield an
// empty set; discovery never fails the surrounding request. Concurrent
// callers share one connection attempt.
func (g *Gateway) Discover(ctx context.Context) []tools.Descriptor {
	log := observability.LoggerFromContext(ctx)

	g.mu.RLock()
	if g.session != nil {
		names := g.available
		g.mu.RUnlock()
		return g.descriptors(names)
	}
	g.mu.RUnlock()

	names, _, _ := g.group.Do("discover", func() (any, error) {
		return g.connect(ctx, log), nil
	})

	list, _ := names.([]string)
	return g.descriptors(list)
}

func (g *Gateway) connect(ctx context.Context, log *slog.Logger) []string {
	if _, err := os.Stat(g.cfg.CredentialsPath); err != nil {
		log.Warn("calendar credentials not found, scheduling tools unavailable",
			"path", g.cfg.CredentialsPath)
		return nil
	}

	// The timeout bounds the handshake, not the provider process: a command
	// bound to the timed context would be killed the moment discovery
	// returns, leaving a dead session behind. The process is shut down by
	// the transport when the session closes.
	transport := g.cfg.Transport
	if transport == nil {
		cmd := exec.Command(g.cfg.Command, g.cfg.Args...)
		cmd.Env = append(os.Environ(), "GOOGLE_OAUTH_CREDENTIALS="+g.cfg.CredentialsPath)
		transport = &mcpsdk.CommandTransport{Command: cmd}
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "portfolio-agent",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		log.Warn("calendar MCP connect failed", "error", err)
		return nil
	}

	var names []string
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			log.Warn("calendar MCP tool listing failed", "error", err)
			_ = session.Close()
			return nil
		}
		if _, ok := allowedTools[tool.Name]; ok {
			names = append(names, tool.Name)
		}
	}

	g.mu.Lock()
	g.session = session
	g.available = names
	g.mu.Unlock()

	log.Info("calendar MCP connected", "tools", len(names))
	return names
}

func (g *Gateway) descriptors(names []string) []tools.Descriptor {
	out := make([]tools.Descriptor, 0, len(names))
	for _, n := range names {
		if d, ok := allowedTools[n]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Available reports whether the provider is connected and offering tools.
func (g *Gateway) Available() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session != nil && len(g.available) > 0
}

// Invoke calls a provider tool by name. Unlike Discover, callers see errors;
// the execution step wraps them into structured results.
func (g *Gateway) Invoke(ctx context.Context, name string, args map[string]any) (string, error) {
	g.mu.RLock()
	session := g.session
	g.mu.RUnlock()

	if session == nil {
		return "", fmt.Errorf("scheduling backend is not connected")
	}

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("calendar tool %s: %w", name, err)
	}

	var text string
	for _, content := range result.Content {
		if tc, ok := content.(*mcpsdk.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}

	if result.IsError {
		return "", fmt.Errorf("calendar tool %s failed: %s", name, text)
	}
	return text, nil
}

// Close shuts the provider connection down.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		return nil
	}
	err := g.session.Close()
	g.session = nil
	g.available = nil
	return err
}

// RegisterCalendarTools adds the allow-listed read-only tools plus the
// booking proxy to the registry. Call after a successful Discover; with a
// degraded gateway there is nothing to register and the scheduling mode
// binds an empty set.
func RegisterCalendarTools(r *tools.Registry, g *Gateway, defaultUTCOffset string) []string {
	if !g.Available() {
		return nil
	}

	g.mu.RLock()
	names := append([]string(nil), g.available...)
	g.mu.RUnlock()

	for _, name := range names {
		r.Register(&gatewayTool{gateway: g, desc: allowedTools[name]})
	}

	r.Register(NewBookMeetingTool(g, defaultUTCOffset))
	return append(names, ToolBookMeeting)
}

// gatewayTool adapts one allow-listed provider tool to the registry.
type gatewayTool struct {
	gateway *Gateway
	desc    tools.Descriptor
}

func (t *gatewayTool) Descriptor() tools.Descriptor { return t.desc }

func (t *gatewayTool) Call(ctx context.Context, _ tools.ToolContext, input map[string]any) (string, error) {
	return t.gateway.Invoke(ctx, t.desc.Name, input)
}
