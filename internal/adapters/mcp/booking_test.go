package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "already has offset", in: "2025-03-14T14:00:00+05:00", want: "2025-03-14T14:00:00+05:00"},
		{name: "utc z suffix", in: "2025-03-14T09:00:00Z", want: "2025-03-14T09:00:00Z"},
		{name: "naive seconds", in: "2025-03-14T14:00:00", want: "2025-03-14T14:00:00+05:00"},
		{name: "naive minutes", in: "2025-03-14T14:00", want: "2025-03-14T14:00:00+05:00"},
		{name: "naive with space", in: "2025-03-14 14:00", want: "2025-03-14T14:00:00+05:00"},
		{name: "garbage", in: "tomorrow-ish", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTimestamp(tt.in, "+05:00")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildEventArgsExpandsAttendeesAsArray(t *testing.T) {
	tool := NewBookMeetingTool(NewGateway(Config{}), "+05:00")

	args, err := tool.buildEventArgs(map[string]any{
		"name":  "Jane",
		"email": "jane@x.com",
		"start": "2025-03-14T14:00:00",
	})
	require.NoError(t, err)

	assert.Equal(t, "primary", args["calendarId"])
	assert.Equal(t, "Meeting with Jane", args["summary"])
	assert.Equal(t, "2025-03-14T14:00:00+05:00", args["start"])

	// End defaults to 30 minutes after start.
	start, _ := time.Parse(time.RFC3339, args["start"].(string))
	end, err := time.Parse(time.RFC3339, args["end"].(string))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, end.Sub(start))

	attendees, ok := args["attendees"].([]any)
	require.True(t, ok, "attendees must be a real array, not an encoded string")
	require.Len(t, attendees, 1)
	assert.Equal(t, map[string]any{"email": "jane@x.com"}, attendees[0])
}

func TestBuildEventArgsRequiresIdentity(t *testing.T) {
	tool := NewBookMeetingTool(NewGateway(Config{}), "+05:00")

	_, err := tool.buildEventArgs(map[string]any{"start": "2025-03-14T14:00:00"})
	require.Error(t, err)
}

func TestDiscoverWithoutCredentialsDegrades(t *testing.T) {
	g := NewGateway(Config{
		Command:         "true",
		CredentialsPath: "/nonexistent/credentials.json",
		Timeout:         time.Second,
	})

	descs := g.Discover(context.Background())
	assert.Empty(t, descs)
	assert.False(t, g.Available())

	_, err := g.Invoke(context.Background(), "list-events", nil)
	require.Error(t, err)
}
