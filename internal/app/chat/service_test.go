package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mudasirshah/portfolio-agent/internal/adapters/llm"
	"github.com/mudasirshah/portfolio-agent/internal/adapters/storage/memory"
	"github.com/mudasirshah/portfolio-agent/internal/app/agentflow"
	"github.com/mudasirshah/portfolio-agent/internal/app/tools"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
)

func newTestService(t *testing.T, responses ...llm.MockResponse) (*Service, *memory.SessionStore) {
	t.Helper()

	client := llm.NewMockClient(responses...)
	store := memory.NewSessionStore(memory.Options{})
	t.Cleanup(store.Close)

	registry := tools.NewRegistry()
	tools.RegisterPortfolioTools(registry)

	router := agentflow.NewRouter(client, "test-model")
	handlers := []agentflow.ModeHandler{
		agentflow.NewInformationalHandler(client, registry, "test-model"),
		agentflow.NewSchedulingHandler(client, registry, nil, "test-model", nil),
	}
	orch := agentflow.NewOrchestrator(store, registry, router, handlers, false)

	return NewService(store, orch), store
}

func TestSendMessageAppendsBothTurns(t *testing.T) {
	svc, store := newTestService(t,
		llm.MockResponse{Content: "INFORMATIONAL"},
		llm.MockResponse{Content: "Hi, ask me about the projects."},
	)

	out, err := svc.SendMessage(context.Background(), SendMessageInput{
		SessionID: "s1",
		Message:   "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionID("s1"), out.SessionID)
	assert.Contains(t, out.Response, "projects")

	turns, err := store.GetTurns("s1", 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, "hello", turns[0].Text)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
}

func TestSendMessageDefaultsSessionID(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.SendMessage(context.Background(), SendMessageInput{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionID(DefaultSessionID), out.SessionID)
}

func TestConcurrentSendsOnOneSessionKeepOrder(t *testing.T) {
	svc, store := newTestService(t,
		llm.MockResponse{Content: "INFORMATIONAL"},
		llm.MockResponse{Content: "noted"},
	)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SendMessage(context.Background(), SendMessageInput{
				SessionID: "shared",
				Message:   fmt.Sprintf("message %d", i),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	turns, err := store.GetTurns("shared", 0)
	require.NoError(t, err)
	require.Len(t, turns, 2*n)

	// Requests on one session are serialized: user and assistant turns
	// strictly alternate.
	for i, turn := range turns {
		if i%2 == 0 {
			assert.Equal(t, domain.RoleUser, turn.Role, "turn %d", i)
		} else {
			assert.Equal(t, domain.RoleAssistant, turn.Role, "turn %d", i)
		}
	}

	svc.locksMu.Lock()
	defer svc.locksMu.Unlock()
	assert.Empty(t, svc.locks, "lock entries must be released with their requests")
}

func TestSessionLocksDoNotAccumulate(t *testing.T) {
	svc, _ := newTestService(t,
		llm.MockResponse{Content: "INFORMATIONAL"},
		llm.MockResponse{Content: "noted"},
	)

	// Many distinct session ids: the store evicts old sessions eventually,
	// so the lock map must not hold one entry per id ever seen.
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.SendMessage(context.Background(), SendMessageInput{
				SessionID: domain.SessionID(fmt.Sprintf("visitor-%d", i)),
				Message:   "hello",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	svc.locksMu.Lock()
	defer svc.locksMu.Unlock()
	assert.Empty(t, svc.locks)
}
