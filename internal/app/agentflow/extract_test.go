package agentflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mudasirshah/portfolio-agent/internal/domain"
)

func userTurn(text string) *domain.Turn {
	return &domain.Turn{Role: domain.RoleUser, Text: text}
}

func assistantTurn(text string) *domain.Turn {
	return &domain.Turn{Role: domain.RoleAssistant, Text: text}
}

func TestExtractMeetingDetailsProgression(t *testing.T) {
	turns := []*domain.Turn{
		userTurn("I'd like to book a meeting"),
	}
	d := ExtractMeetingDetails(turns)
	assert.Equal(t, StateNoDetails, d.State())

	turns = append(turns,
		assistantTurn("Great! What's your name?"),
		userTurn("Jane"),
	)
	d = ExtractMeetingDetails(turns)
	assert.Equal(t, "Jane", d.Name)
	assert.Equal(t, StateHasName, d.State())

	turns = append(turns,
		assistantTurn("Thanks Jane. What's your email address?"),
		userTurn("jane@example.com"),
	)
	d = ExtractMeetingDetails(turns)
	assert.Equal(t, "jane@example.com", d.Email)
	assert.Equal(t, StateHasNameEmail, d.State())

	turns = append(turns,
		assistantTurn("When would you like to meet?"),
		userTurn("tomorrow at 2pm"),
	)
	d = ExtractMeetingDetails(turns)
	assert.NotEmpty(t, d.TimeExpr)
	assert.Equal(t, StateHasAllDetails, d.State())
	assert.False(t, d.Confirmed)
}

func TestExtractMeetingDetailsConfirmation(t *testing.T) {
	turns := []*domain.Turn{
		userTurn("Hi, I'm Jane Doe, I want to schedule a call"),
		assistantTurn("Nice to meet you, Jane. What's your email?"),
		userTurn("jane@example.com"),
		assistantTurn("When works for you?"),
		userTurn("2026-03-10 at 10:30"),
		assistantTurn("So that's 2026-03-10 at 10:30. Shall I book it?"),
	}
	d := ExtractMeetingDetails(turns)
	assert.Equal(t, "Jane Doe", d.Name)
	assert.True(t, d.Restated)
	assert.False(t, d.Confirmed)
	assert.Equal(t, StateHasAllDetails, d.State())

	turns = append(turns, userTurn("yes, go ahead"))
	d = ExtractMeetingDetails(turns)
	assert.True(t, d.Confirmed)
	assert.Equal(t, StateConfirmed, d.State())
}

func TestExtractAllFieldsFromOneMessage(t *testing.T) {
	d := ExtractMeetingDetails([]*domain.Turn{
		userTurn("Can we meet tomorrow at 2pm? I'm Jane, jane@x.com"),
	})
	assert.Equal(t, "Jane", d.Name)
	assert.Equal(t, "jane@x.com", d.Email)
	assert.Equal(t, "tomorrow at 2pm", d.TimeExpr)
	assert.Equal(t, StateHasAllDetails, d.State())
}

func TestAffirmationBeforeRestatementDoesNotConfirm(t *testing.T) {
	// "yes" answers an ordinary question, not a booking restatement.
	turns := []*domain.Turn{
		userTurn("I'm Jane, jane@example.com, can we meet tomorrow at 3pm?"),
		assistantTurn("Do you prefer a video call?"),
		userTurn("yes"),
	}
	d := ExtractMeetingDetails(turns)
	assert.False(t, d.Confirmed)
	assert.Equal(t, StateHasAllDetails, d.State())
}

func TestBareNameNeedsPrecedingNameQuestion(t *testing.T) {
	// Without the assistant asking for a name, a short reply stays unparsed.
	d := ExtractMeetingDetails([]*domain.Turn{
		userTurn("book a meeting"),
		assistantTurn("When would you like to meet?"),
		userTurn("Jane"),
	})
	assert.Empty(t, d.Name)

	d = ExtractMeetingDetails([]*domain.Turn{
		userTurn("book a meeting"),
		assistantTurn("Sure, what's your name?"),
		userTurn("Jane"),
	})
	assert.Equal(t, "Jane", d.Name)
}

func TestFindTimeExpr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"let's meet tomorrow at 2pm", "tomorrow at 2pm"},
		{"2026-03-10 14:30 works", "2026-03-10 14:30"},
		{"how about friday?", ""},
		{"around 10:30", "10:30"},
		{"no time here", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, findTimeExpr(tc.in), "input: %s", tc.in)
	}
}

func TestIsAffirmation(t *testing.T) {
	assert.True(t, isAffirmation("Yes!"))
	assert.True(t, isAffirmation("book it"))
	assert.True(t, isAffirmation("sounds good to me"))
	assert.False(t, isAffirmation("yesterday was fine"))
	assert.False(t, isAffirmation("no"))
}
