package agentflow

import (
	"regexp"
	"strings"

	"github.com/mudasirshah/portfolio-agent/internal/domain"
)

// MeetingState tracks how far the booking dialogue has progressed. It is
// never persisted: every turn derives it afresh from the session history.
type MeetingState int

const (
	StateNoDetails MeetingState = iota
	StateHasName
	StateHasNameEmail
	StateHasAllDetails
	StateConfirmed
)

func (s MeetingState) String() string {
	switch s {
	case StateHasName:
		return "has_name"
	case StateHasNameEmail:
		return "has_name_email"
	case StateHasAllDetails:
		return "has_all_details"
	case StateConfirmed:
		return "confirmed"
	default:
		return "no_details"
	}
}

// MeetingDetails is everything the scheduling dialogue has gathered so far.
type MeetingDetails struct {
	Name     string
	Email    string
	TimeExpr string

	// Restated is true once an assistant turn has echoed the resolved time
	// back to the visitor. Confirmed requires a later user affirmation.
	Restated  bool
	Confirmed bool
}

// State collapses the gathered fields into the dialogue state. The booking
// tool may only be offered from StateConfirmed.
func (d MeetingDetails) State() MeetingState {
	switch {
	case d.Name == "":
		return StateNoDetails
	case d.Email == "":
		return StateHasName
	case d.TimeExpr == "":
		return StateHasNameEmail
	case d.Confirmed:
		return StateConfirmed
	default:
		return StateHasAllDetails
	}
}

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Clock times ("2pm", "14:30"), ISO dates, and relative day words.
	clockRe   = regexp.MustCompile(`(?i)\b\d{1,2}(:\d{2})?\s*(am|pm)\b|\b\d{1,2}:\d{2}\b`)
	isoDateRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	dayWordRe = regexp.MustCompile(`(?i)\b(today|tomorrow|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

	// "I'm Jane", "I am Jane Doe", "my name is Jane", "this is Jane".
	nameIntroRe = regexp.MustCompile(`(?i)\b(?:i'?m|i am|my name is|this is)\s+([A-Z][a-zA-Z'\-]+(?:\s+[A-Z][a-zA-Z'\-]+)?)`)

	nameWordRe = regexp.MustCompile(`^[A-Za-z'\-]+$`)

	affirmations = []string{
		"yes", "yep", "yeah", "sure", "correct", "confirm", "confirmed",
		"go ahead", "sounds good", "that works", "please do", "book it",
		"ok", "okay", "perfect",
	}
)

// ExtractMeetingDetails scans the session history and recovers the meeting
// fields plus the restate/confirm handshake. Purely lexical and
// deterministic, so the dialogue state is testable without a model.
func ExtractMeetingDetails(turns []*domain.Turn) MeetingDetails {
	var d MeetingDetails
	restatedAt := -1

	for i, t := range turns {
		switch t.Role {
		case domain.RoleUser:
			text := t.Text

			if d.Email == "" {
				if m := emailRe.FindString(text); m != "" {
					d.Email = m
				}
			}
			if d.TimeExpr == "" {
				if expr := findTimeExpr(text); expr != "" {
					d.TimeExpr = expr
				}
			}
			if d.Name == "" {
				if m := nameIntroRe.FindStringSubmatch(text); m != nil {
					d.Name = m[1]
				} else if i > 0 && askedForName(turns[i-1]) {
					if candidate := bareNameCandidate(text); candidate != "" {
						d.Name = candidate
					}
				}
			}

			if restatedAt >= 0 && i > restatedAt && isAffirmation(text) {
				d.Confirmed = true
			}

		case domain.RoleAssistant:
			// A restatement is an assistant turn that echoes a concrete time
			// once the visitor has provided one.
			if d.TimeExpr != "" && t.Text != "" && findTimeExpr(t.Text) != "" {
				d.Restated = true
				restatedAt = i
			}
		}
	}

	return d
}

func findTimeExpr(text string) string {
	clock := clockRe.FindString(text)
	iso := isoDateRe.FindString(text)
	day := dayWordRe.FindString(text)

	if iso != "" && clock != "" {
		return iso + " " + clock
	}
	if day != "" && clock != "" {
		return day + " at " + clock
	}
	if iso != "" {
		return iso
	}
	if clock != "" {
		return clock
	}
	return ""
}

func askedForName(t *domain.Turn) bool {
	return t.Role == domain.RoleAssistant && strings.Contains(strings.ToLower(t.Text), "name")
}

// bareNameCandidate accepts a short reply that looks like just a name:
// one or two words, no email, no digits.
func bareNameCandidate(text string) string {
	text = strings.TrimSpace(strings.Trim(text, ".!,"))
	if text == "" || strings.ContainsAny(text, "@0123456789") {
		return ""
	}
	words := strings.Fields(text)
	if len(words) > 2 {
		return ""
	}
	for _, w := range words {
		if !nameWordRe.MatchString(w) {
			return ""
		}
	}
	return text
}

func isAffirmation(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(strings.Trim(text, ".!,?")))
	for _, a := range affirmations {
		if normalized == a || strings.HasPrefix(normalized, a+" ") || strings.HasPrefix(normalized, a+",") {
			return true
		}
	}
	return false
}
