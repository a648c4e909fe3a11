package agentflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudasirshah/portfolio-agent/internal/adapters/llm"
	"github.com/mudasirshah/portfolio-agent/internal/adapters/mcp"
	"github.com/mudasirshah/portfolio-agent/internal/adapters/storage/memory"
	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
)

func TestSchedulingHandlerFiltersBookingFromReadOnlySet(t *testing.T) {
	h := NewSchedulingHandler(llm.NewMockClient(), tools.NewRegistry(), nil, "test-model",
		[]string{"list-calendars", "list-events", mcp.ToolBookMeeting})

	assert.Equal(t, []string{"list-calendars", "list-events"}, h.calendarTools)
}

func TestSchedulingHandlerDegradesWithoutGateway(t *testing.T) {
	client := llm.NewMockClient()
	h := NewSchedulingHandler(client, tools.NewRegistry(), nil, "test-model", nil)

	res, err := h.Respond(context.Background(), []*domain.Turn{
		userTurn("I'd like to book a call"),
	})
	require.NoError(t, err)

	assert.Equal(t, schedulingUnavailableReply, res.Reply)
	assert.Nil(t, res.ToolCall)
	assert.Empty(t, client.Calls(), "degraded mode must not consult the model")
}

// newCalendarGateway wires a real gateway to an in-process calendar provider
// and returns it along with a slot that captures create-event arguments.
func newCalendarGateway(t *testing.T) (*mcp.Gateway, *map[string]any) {
	t.Helper()

	var booked map[string]any
	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "fake-calendar", Version: "0.0.1"}, nil)
	mcpsdk.AddTool(server, &mcpsdk.Tool{Name: "list-events", Description: "lists events"},
		func(_ context.Context, _ *mcpsdk.CallToolRequest, _ map[string]any) (*mcpsdk.CallToolResult, any, error) {
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "[]"}}}, nil, nil
		})
	mcpsdk.AddTool(server, &mcpsdk.Tool{Name: "create-event", Description: "creates an event"},
		func(_ context.Context, _ *mcpsdk.CallToolRequest, in map[string]any) (*mcpsdk.CallToolResult, any, error) {
			booked = in
			return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: "event created"}}}, nil, nil
		})

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := server.Connect(context.Background(), serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	creds := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte("{}"), 0o600))

	gateway := mcp.NewGateway(mcp.Config{
		CredentialsPath: creds,
		Timeout:         2 * time.Second,
		Transport:       clientTransport,
	})
	t.Cleanup(func() { _ = gateway.Close() })
	return gateway, &booked
}

// A confirmed booking dialogue must drive the booking tool through the
// gateway into the provider, then fold the outcome into the reply.
func TestConfirmedBookingInvokesGateway(t *testing.T) {
	gateway, booked := newCalendarGateway(t)

	registry := tools.NewRegistry()
	tools.RegisterPortfolioTools(registry)
	require.NotEmpty(t, gateway.Discover(context.Background()))
	calendarTools := mcp.RegisterCalendarTools(registry, gateway, "+05:00")
	require.Contains(t, calendarTools, mcp.ToolBookMeeting)

	client := llm.NewMockClient(
		llm.MockResponse{Content: "SCHEDULING"},
		llm.MockResponse{ToolCalls: []llm.ToolCall{{
			ID:   "call-1",
			Name: mcp.ToolBookMeeting,
			Input: map[string]any{
				"name":  "Jane Doe",
				"email": "jane@example.com",
				"start": "2026-09-03T14:00:00",
			},
		}}},
		llm.MockResponse{Content: "You're booked for 2026-09-03 at 14:00. See you then!"},
	)

	store := memory.NewSessionStore(memory.Options{})
	t.Cleanup(store.Close)

	router := NewRouter(client, "test-model")
	handlers := []ModeHandler{
		NewInformationalHandler(client, registry, "test-model"),
		NewSchedulingHandler(client, registry, gateway, "test-model", calendarTools),
	}
	orch := NewOrchestrator(store, registry, router, handlers, false)

	_, err := store.GetOrCreateSession("s1")
	require.NoError(t, err)
	script := []*domain.Turn{
		userTurn("I'd like to book a meeting"),
		assistantTurn("Happy to set that up. What's your name?"),
		userTurn("I'm Jane Doe"),
		assistantTurn("Thanks Jane. What's your email address?"),
		userTurn("jane@example.com"),
		assistantTurn("When would you like to meet?"),
		userTurn("2026-09-03 at 14:00"),
		assistantTurn("So that's 2026-09-03 at 14:00. Shall I book it?"),
		userTurn("yes go ahead"),
	}
	for i, turn := range script {
		turn.ID = domain.TurnID(fmt.Sprintf("t%d", i))
		turn.SessionID = "s1"
		require.NoError(t, store.AppendTurn(turn))
	}

	reply, trace := orch.Run(context.Background(), "s1")

	assert.Contains(t, reply, "booked")
	assert.Equal(t, "scheduling", trace.ActiveAgent)
	assert.Equal(t, domain.IntentToolExecution, trace.IntentDetected)
	assert.Equal(t, mcp.ToolBookMeeting, trace.ToolSelected)

	// The provider saw the expanded create-event arguments.
	require.NotNil(t, *booked)
	assert.Equal(t, "primary", (*booked)["calendarId"])
	assert.Equal(t, "2026-09-03T14:00:00+05:00", (*booked)["start"])
	assert.Equal(t, []any{map[string]any{"email": "jane@example.com"}}, (*booked)["attendees"])

	turns, err := store.GetTurns("s1", 0)
	require.NoError(t, err)
	last := turns[len(turns)-1]
	require.NotNil(t, last.ToolResult)
	assert.False(t, last.ToolResult.IsError)
	assert.Contains(t, last.ToolResult.Content, "event created")

	// The booking tool was offered only on the confirmed turn.
	calls := client.Calls()
	require.Len(t, calls, 3)
	assert.True(t, hasToolNamed(calls[1].Tools, mcp.ToolBookMeeting))
}

// Before the visitor confirms the restated time, the booking tool stays
// unbound: the model cannot book early, no matter what it asks for.
func TestUnconfirmedDialogueDoesNotBindBookingTool(t *testing.T) {
	gateway, booked := newCalendarGateway(t)

	registry := tools.NewRegistry()
	require.NotEmpty(t, gateway.Discover(context.Background()))
	calendarTools := mcp.RegisterCalendarTools(registry, gateway, "+05:00")

	client := llm.NewMockClient(
		llm.MockResponse{Content: "When would you like to meet?"},
	)
	h := NewSchedulingHandler(client, registry, gateway, "test-model", calendarTools)

	res, err := h.Respond(context.Background(), []*domain.Turn{
		userTurn("I'm Jane Doe, jane@example.com, I'd like to book a call"),
	})
	require.NoError(t, err)

	assert.NotContains(t, res.Allowed, mcp.ToolBookMeeting)
	assert.Nil(t, *booked)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.False(t, hasToolNamed(calls[0].Tools, mcp.ToolBookMeeting))
}

func hasToolNamed(defs []llm.ToolDefinition, name string) bool {
	for _, d := range defs {
		if d.Name == name {
			return true
		}
	}
	return false
}

func TestStateInstructionGatesBooking(t *testing.T) {
	d := MeetingDetails{Name: "Jane", Email: "jane@example.com", TimeExpr: "tomorrow at 2pm"}

	unconfirmed := stateInstruction(d, StateHasAllDetails)
	assert.Contains(t, unconfirmed, "Do not book yet")

	d.Confirmed = true
	confirmed := stateInstruction(d, StateConfirmed)
	assert.Contains(t, confirmed, "Book the meeting now")
}

func TestStateInstructionAsksForNextField(t *testing.T) {
	assert.Contains(t, stateInstruction(MeetingDetails{}, StateNoDetails), "name")
	assert.Contains(t, stateInstruction(MeetingDetails{Name: "Jane"}, StateHasName), "email")
	assert.Contains(t,
		stateInstruction(MeetingDetails{Name: "Jane", Email: "jane@example.com"}, StateHasNameEmail),
		"date and time")
}
