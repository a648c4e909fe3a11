// Package chat is the application service behind the /chat endpoint: one
// request in, one reply plus trace out, with the session timeline updated.
package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mudasirshah/portfolio-agent/internal/app/agentflow"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
	"github.com/mudasirshah/portfolio-agent/internal/observability"
)

const DefaultSessionID = "default"

type Service struct {
	store        domain.SessionStore
	orchestrator *agentflow.Orchestrator
	now          func() time.Time

	// One writer per session: concurrent requests on the same session id
	// are serialized so the timeline keeps its order. Entries are
	// refcounted and removed once the last holder releases, so the map
	// does not outgrow the set of in-flight sessions.
	locksMu sync.Mutex
	locks   map[domain.SessionID]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(store domain.SessionStore, orchestrator *agentflow.Orchestrator) *Service {
	return &Service{
		store:        store,
		orchestrator: orchestrator,
		now:          time.Now,
		locks:        make(map[domain.SessionID]*sessionLock),
	}
}

type SendMessageInput struct {
	SessionID domain.SessionID
	Message   string
}

type SendMessageOutput struct {
	Response  string
	SessionID domain.SessionID
	Trace     domain.Trace
}

func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	if in.SessionID == "" {
		in.SessionID = DefaultSessionID
	}

	ctx = observability.WithSessionID(ctx, string(in.SessionID))
	log := observability.LoggerFromContext(ctx)

	unlock := s.lockSession(in.SessionID)
	defer unlock()

	if _, err := s.store.GetOrCreateSession(in.SessionID); err != nil {
		log.Error("failed to open session", "error", err)
		return nil, err
	}

	userTurn := &domain.Turn{
		ID:        domain.TurnID(uuid.NewString()),
		SessionID: in.SessionID,
		Role:      domain.RoleUser,
		Text:      in.Message,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendTurn(userTurn); err != nil {
		log.Error("failed to append user turn", "error", err)
		return nil, err
	}

	reply, trace := s.orchestrator.Run(ctx, in.SessionID)

	assistantTurn := &domain.Turn{
		ID:        domain.TurnID(uuid.NewString()),
		SessionID: in.SessionID,
		Role:      domain.RoleAssistant,
		Text:      reply,
		CreatedAt: s.now(),
	}
	if err := s.store.AppendTurn(assistantTurn); err != nil {
		log.Error("failed to append assistant turn", "error", err)
		return nil, err
	}

	if err := s.store.TouchSession(in.SessionID); err != nil {
		log.Error("failed to touch session", "error", err)
	}

	log.Info("chat turn completed",
		"mode", trace.ActiveAgent,
		"intent", trace.IntentDetected,
		"total_latency_ms", trace.TotalLatencyMS)

	return &SendMessageOutput{
		Response:  reply,
		SessionID: in.SessionID,
		Trace:     trace,
	}, nil
}

func (s *Service) lockSession(id domain.SessionID) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}
