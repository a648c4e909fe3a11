package llm

import (
	"context"
	"encoding/json"
	"fmt"

	go_openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client against any OpenAI-compatible endpoint.
// The production deployment points it at Groq via the base URL override.
type OpenAIClient struct {
	client *go_openai.Client
}

// NewOpenAIClient creates a client for api.openai.com.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{client: go_openai.NewClient(apiKey)}
}

// NewOpenAICompatibleClient creates a client for a custom base URL
// (Groq, Together, a local server, ...).
func NewOpenAICompatibleClient(baseURL, apiKey string) *OpenAIClient {
	cfg := go_openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIClient{client: go_openai.NewClientWithConfig(cfg)}
}

func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	oreq, err := buildOpenAIRequest(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, oreq)
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat: empty choices")
	}

	return parseOpenAIChoice(resp.Choices[0])
}

func buildOpenAIRequest(req ChatRequest) (go_openai.ChatCompletionRequest, error) {
	messages := make([]go_openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	if req.System != "" {
		messages = append(messages, go_openai.ChatCompletionMessage{
			Role:    go_openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, m := range req.Messages {
		switch {
		case m.ToolResult != nil:
			messages = append(messages, go_openai.ChatCompletionMessage{
				Role:       go_openai.ChatMessageRoleTool,
				Content:    m.ToolResult.Content,
				ToolCallID: m.ToolResult.ToolUseID,
			})

		case m.Role == RoleAssistant && len(m.ToolCalls) > 0:
			calls := make([]go_openai.ToolCall, 0, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				args, err := json.Marshal(tc.Input)
				if err != nil {
					return go_openai.ChatCompletionRequest{}, fmt.Errorf("openai: marshal tool args for %s: %w", tc.Name, err)
				}
				calls = append(calls, go_openai.ToolCall{
					ID:   tc.ID,
					Type: go_openai.ToolTypeFunction,
					Function: go_openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			messages = append(messages, go_openai.ChatCompletionMessage{
				Role:      go_openai.ChatMessageRoleAssistant,
				Content:   m.Content,
				ToolCalls: calls,
			})

		default:
			role := go_openai.ChatMessageRoleUser
			if m.Role == RoleAssistant {
				role = go_openai.ChatMessageRoleAssistant
			}
			messages = append(messages, go_openai.ChatCompletionMessage{
				Role:    role,
				Content: m.Content,
			})
		}
	}

	oreq := go_openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		oreq.Temperature = float32(*req.Temperature)
	}

	for _, t := range req.Tools {
		oreq.Tools = append(oreq.Tools, go_openai.Tool{
			Type: go_openai.ToolTypeFunction,
			Function: &go_openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}

	return oreq, nil
}

func parseOpenAIChoice(choice go_openai.ChatCompletionChoice) (*ChatResponse, error) {
	resp := &ChatResponse{
		Content:    choice.Message.Content,
		StopReason: StopEndTurn,
	}

	switch choice.FinishReason {
	case go_openai.FinishReasonToolCalls:
		resp.StopReason = StopToolUse
	case go_openai.FinishReasonLength:
		resp.StopReason = StopMaxTokens
	}

	for _, tc := range choice.Message.ToolCalls {
		input := make(map[string]any)
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &input); err != nil {
				return nil, fmt.Errorf("openai: parse tool arguments for %s: %w", tc.Function.Name, err)
			}
		}
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: input,
		})
	}

	if len(resp.ToolCalls) > 0 {
		resp.StopReason = StopToolUse
	}

	return resp, nil
}
