package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mudasirshah/portfolio-agent/internal/domain"
)

// Store persists sessions and turns in Firestore. Used when chat history
// must survive restarts; the in-memory store covers everything else.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project
// (PORTFOLIO_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDocRef(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) turnsCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDocRef(sessionID).Collection("turns")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type turnDoc struct {
	Role      string    `firestore:"role"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`

	// Tool exchange fields, JSON-encoded to keep the document flat.
	ToolCallID   string `firestore:"tool_call_id,omitempty"`
	ToolCallName string `firestore:"tool_call_name,omitempty"`
	ToolCallArgs string `firestore:"tool_call_args,omitempty"`

	ToolResultID      string  `firestore:"tool_result_id,omitempty"`
	ToolResultName    string  `firestore:"tool_result_name,omitempty"`
	ToolResultContent string  `firestore:"tool_result_content,omitempty"`
	ToolResultIsError bool    `firestore:"tool_result_is_error,omitempty"`
	ToolResultLatency float64 `firestore:"tool_result_latency_ms,omitempty"`
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) GetOrCreateSession(id domain.SessionID) (*domain.Session, error) {
	ctx := context.Background()

	snap, err := s.sessionDocRef(id).Get(ctx)
	if err == nil {
		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("firestore GetOrCreateSession decode: %w", err)
		}
		return &domain.Session{ID: id, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}, nil
	}
	if status.Code(err) != codes.NotFound {
		return nil, fmt.Errorf("firestore GetOrCreateSession: %w", err)
	}

	now := time.Now()
	doc := sessionDoc{CreatedAt: now, UpdatedAt: now}
	if _, err := s.sessionDocRef(id).Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("firestore GetOrCreateSession create: %w", err)
	}
	return &domain.Session{ID: id, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Store) AppendTurn(turn *domain.Turn) error {
	ctx := context.Background()

	doc := turnDoc{
		Role:      string(turn.Role),
		Text:      turn.Text,
		CreatedAt: turn.CreatedAt,
	}

	if turn.ToolCall != nil {
		doc.ToolCallID = turn.ToolCall.ID
		doc.ToolCallName = turn.ToolCall.Name
		args, err := json.Marshal(turn.ToolCall.Args)
		if err != nil {
			return fmt.Errorf("firestore AppendTurn encode args: %w", err)
		}
		doc.ToolCallArgs = string(args)
	}
	if turn.ToolResult != nil {
		doc.ToolResultID = turn.ToolResult.ID
		doc.ToolResultName = turn.ToolResult.Name
		doc.ToolResultContent = turn.ToolResult.Content
		doc.ToolResultIsError = turn.ToolResult.IsError
		doc.ToolResultLatency = turn.ToolResult.LatencyMS
	}

	if _, err := s.turnsCol(turn.SessionID).Doc(string(turn.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendTurn: %w", err)
	}
	return nil
}

func (s *Store) GetTurns(sessionID domain.SessionID, limit int) ([]*domain.Turn, error) {
	ctx := context.Background()

	q := s.turnsCol(sessionID).OrderBy("created_at", firestore.Asc)
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Turn
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore GetTurns: %w", err)
		}

		var doc turnDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode turnDoc: %w", err)
		}

		turn := &domain.Turn{
			ID:        domain.TurnID(snap.Ref.ID),
			SessionID: sessionID,
			Role:      domain.Role(doc.Role),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		}
		if doc.ToolCallName != "" {
			args := make(map[string]any)
			if doc.ToolCallArgs != "" {
				if err := json.Unmarshal([]byte(doc.ToolCallArgs), &args); err != nil {
					return nil, fmt.Errorf("decode tool call args: %w", err)
				}
			}
			turn.ToolCall = &domain.ToolCall{ID: doc.ToolCallID, Name: doc.ToolCallName, Args: args}
		}
		if doc.ToolResultName != "" {
			turn.ToolResult = &domain.ToolResult{
				ID:        doc.ToolResultID,
				Name:      doc.ToolResultName,
				Content:   doc.ToolResultContent,
				IsError:   doc.ToolResultIsError,
				LatencyMS: doc.ToolResultLatency,
			}
		}
		out = append(out, turn)
	}

	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *Store) TouchSession(id domain.SessionID) error {
	ctx := context.Background()

	_, err := s.sessionDocRef(id).Set(ctx, map[string]interface{}{
		"updated_at": time.Now(),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore TouchSession: %w", err)
	}
	return nil
}
