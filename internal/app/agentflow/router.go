package agentflow

import (
	"context"
	"strings"

	"github.com/mudasirshah/portfolio-agent/internal/adapters/llm"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
	"github.com/mudasirshah/portfolio-agent/internal/observability"
)

// cancellation lexicon: the escape hatch out of a scheduling sub-dialogue;
// without it a refusal keeps getting scheduling prompts. Weak phrases like
// "no" match the whole message or its opening clause before a comma only,
// since openers like "no problem, 2pm works" are affirmative. The
// unambiguous phrases also match as a plain prefix.
var cancellationExact = []string{
	"no", "nope", "nah", "don't", "dont", "leave it", "actually no",
}

var cancellationPrefixes = []string{
	"cancel", "stop", "nevermind", "never mind", "forget it",
	"no thanks", "no thank you", "not now",
}

// Router classifies the latest user message into a conversational mode.
type Router struct {
	llm   llm.Client
	model string
}

func NewRouter(client llm.Client, model string) *Router {
	return &Router{llm: client, model: model}
}

// Route returns the mode for the latest user turn. The deterministic
// cancellation check runs before the model is consulted; an unusable
// classification falls back to the non-mutating informational mode.
func (r *Router) Route(ctx context.Context, turns []*domain.Turn) domain.Mode {
	log := observability.LoggerFromContext(ctx)

	latest := latestUserText(turns)
	if latest == "" {
		return domain.ModeInformational
	}

	if IsCancellation(latest) {
		log.Info("router: cancellation phrase, forcing informational mode")
		return domain.ModeInformational
	}

	temp := 0.0
	resp, err := r.llm.Chat(ctx, llm.ChatRequest{
		Model:       r.model,
		System:      routerDirective,
		Messages:    routingMessages(turns),
		MaxTokens:   16,
		Temperature: &temp,
	})
	if err != nil {
		log.Warn("router: classification failed, defaulting to informational", "error", err)
		return domain.ModeInformational
	}

	mode := parseModeLabel(resp.Content)
	log.Info("router: mode selected", "mode", mode)
	return mode
}

// IsCancellation reports whether the message matches the refusal lexicon.
func IsCancellation(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(text), ".!,?")))
	for _, p := range cancellationPrefixes {
		if normalized == p || strings.HasPrefix(normalized, p+" ") || strings.HasPrefix(normalized, p+",") {
			return true
		}
	}
	for _, p := range cancellationExact {
		if normalized == p || strings.HasPrefix(normalized, p+",") {
			return true
		}
	}
	return false
}

func parseModeLabel(content string) domain.Mode {
	if strings.Contains(strings.ToUpper(content), "SCHEDUL") {
		return domain.ModeScheduling
	}
	return domain.ModeInformational
}

// routingMessages gives the classifier the latest message plus a short tail
// of history so bare answers ("jane@x.com") resolve against the pending
// scheduling question.
func routingMessages(turns []*domain.Turn) []llm.Message {
	const tail = 6

	start := 0
	if len(turns) > tail {
		start = len(turns) - tail
	}

	var msgs []llm.Message
	for _, t := range turns[start:] {
		switch t.Role {
		case domain.RoleUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: t.Text})
		case domain.RoleAssistant:
			if t.Text != "" {
				msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: t.Text})
			}
		}
	}
	return msgs
}

func latestUserText(turns []*domain.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == domain.RoleUser {
			return turns[i].Text
		}
	}
	return ""
}
