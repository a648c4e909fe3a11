package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startFakeProvider runs an in-process MCP server exposing the given tools
// and returns a transport for the gateway to connect through.
func startFakeProvider(t *testing.T, toolNames ...string) mcpsdk.Transport {
	t.Helper()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: "fake-calendar", Version: "0.0.1"}, nil)
	for _, name := range toolNames {
		tool := &mcpsdk.Tool{Name: name, Description: name}
		mcpsdk.AddTool(server, tool,
			func(_ context.Context, _ *mcpsdk.CallToolRequest, _ map[string]any) (*mcpsdk.CallToolResult, any, error) {
				return &mcpsdk.CallToolResult{
					Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: `[{"id":"primary"}]`}},
				}, nil, nil
			})
	}

	serverTransport, clientTransport := mcpsdk.NewInMemoryTransports()
	session, err := server.Connect(context.Background(), serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return clientTransport
}

func writeFakeCredentials(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	return path
}

// The discovery timeout bounds the handshake only. The provider connection
// must stay usable after Discover returns, even with a short timeout.
func TestDiscoverKeepsConnectionUsableForInvoke(t *testing.T) {
	g := NewGateway(Config{
		CredentialsPath: writeFakeCredentials(t),
		Timeout:         2 * time.Second,
		Transport:       startFakeProvider(t, "list-calendars", "list-events"),
	})
	t.Cleanup(func() { _ = g.Close() })

	descs := g.Discover(context.Background())
	require.Len(t, descs, 2)
	assert.True(t, g.Available())

	// Well past the handshake; the session must not have died with it.
	out, err := g.Invoke(context.Background(), "list-calendars", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "primary")
}

func TestDiscoverFiltersToAllowList(t *testing.T) {
	g := NewGateway(Config{
		CredentialsPath: writeFakeCredentials(t),
		Timeout:         2 * time.Second,
		Transport:       startFakeProvider(t, "list-calendars", "delete-calendar", "update-event"),
	})
	t.Cleanup(func() { _ = g.Close() })

	descs := g.Discover(context.Background())
	require.Len(t, descs, 1)
	assert.Equal(t, "list-calendars", descs[0].Name)
}

func TestInvokeAfterCloseFails(t *testing.T) {
	g := NewGateway(Config{
		CredentialsPath: writeFakeCredentials(t),
		Timeout:         2 * time.Second,
		Transport:       startFakeProvider(t, "list-events"),
	})

	g.Discover(context.Background())
	require.NoError(t, g.Close())

	_, err := g.Invoke(context.Background(), "list-events", nil)
	require.Error(t, err)
	assert.False(t, g.Available())
}
