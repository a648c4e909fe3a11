package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
)

// ToolBookMeeting is the proxy hiding the provider's create-event shape from
// the model: it takes a handful of flat fields and expands them itself.
const ToolBookMeeting = "book_meeting"

// BookMeetingTool wraps the provider's create-event behind a simplified
// argument set. Attendees are expanded to the structured array the provider
// requires; never an encoded string. Timestamps without a UTC offset get the
// configured default.
type BookMeetingTool struct {
	gateway       *Gateway
	defaultOffset string
}

func NewBookMeetingTool(g *Gateway, defaultUTCOffset string) *BookMeetingTool {
	if defaultUTCOffset == "" {
		defaultUTCOffset = "+00:00"
	}
	return &BookMeetingTool{gateway: g, defaultOffset: defaultUTCOffset}
}

func (t *BookMeetingTool) Descriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        ToolBookMeeting,
		Description: "Books a confirmed meeting on the calendar and invites the visitor. Only call this after the visitor has explicitly confirmed the date and time.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":        map[string]any{"type": "string", "description": "The visitor's name."},
				"email":       map[string]any{"type": "string", "description": "The visitor's email address for the invite."},
				"start":       map[string]any{"type": "string", "description": "Meeting start time, ISO 8601 (e.g. 2025-03-14T14:00:00)."},
				"end":         map[string]any{"type": "string", "description": "Meeting end time, ISO 8601. Defaults to 30 minutes after start."},
				"description": map[string]any{"type": "string", "description": "Optional meeting agenda."},
			},
			"required": []any{"name", "email", "start"},
		},
	}
}

func (t *BookMeetingTool) Call(ctx context.Context, _ tools.ToolContext, input map[string]any) (string, error) {
	args, err := t.buildEventArgs(input)
	if err != nil {
		return "", err
	}
	return t.gateway.Invoke(ctx, "create-event", args)
}

// buildEventArgs expands the simplified booking fields into the provider's
// create-event argument shape.
func (t *BookMeetingTool) buildEventArgs(input map[string]any) (map[string]any, error) {
	name := strings.TrimSpace(stringArg(input, "name"))
	email := strings.TrimSpace(stringArg(input, "email"))
	if name == "" || email == "" {
		return nil, fmt.Errorf("book_meeting requires both name and email")
	}

	start, err := NormalizeTimestamp(stringArg(input, "start"), t.defaultOffset)
	if err != nil {
		return nil, fmt.Errorf("book_meeting start time: %w", err)
	}

	end := stringArg(input, "end")
	if end == "" {
		startTime, _ := time.Parse(time.RFC3339, start)
		end = startTime.Add(30 * time.Minute).Format(time.RFC3339)
	} else {
		end, err = NormalizeTimestamp(end, t.defaultOffset)
		if err != nil {
			return nil, fmt.Errorf("book_meeting end time: %w", err)
		}
	}

	description := stringArg(input, "description")
	if description == "" {
		description = "Scheduled through the portfolio assistant."
	}

	return map[string]any{
		"calendarId":  "primary",
		"summary":     "Meeting with " + name,
		"description": description,
		"start":       start,
		"end":         end,
		// The provider rejects attendees passed as an encoded string; it
		// must be a real array of objects.
		"attendees": []any{
			map[string]any{"email": email},
		},
	}, nil
}

func stringArg(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// timestamp layouts accepted from the model, most specific first.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeTimestamp canonicalizes a timestamp to RFC3339. Inputs that
// already carry a UTC offset pass through re-formatted; naive inputs get the
// default offset appended.
func NormalizeTimestamp(ts, defaultOffset string) (string, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return "", fmt.Errorf("empty timestamp")
	}

	if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
		return parsed.Format(time.RFC3339), nil
	}

	for _, layout := range naiveLayouts {
		if _, err := time.Parse(layout, ts); err == nil {
			canonical := strings.Replace(ts, " ", "T", 1)
			if len(canonical) == len("2006-01-02T15:04") {
				canonical += ":00"
			}
			withOffset := canonical + defaultOffset
			if parsed, err := time.Parse(time.RFC3339, withOffset); err == nil {
				return parsed.Format(time.RFC3339), nil
			}
		}
	}

	return "", fmt.Errorf("unrecognized timestamp %q", ts)
}
