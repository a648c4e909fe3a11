package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mudasirshah/portfolio-agent/internal/app/chat"
	"github.com/mudasirshah/portfolio-agent/internal/domain"
)

type Server struct {
	svc *chat.Service
}

func NewServer(svc *chat.Service, allowedOrigin string) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	// /chat   → POST: send a message, get the reply + trace
	// /health → GET: liveness probe
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/health", s.handleHealth)

	return chainMiddlewares(mux,
		withCORS(allowedOrigin),
		withRequestID,
		withLogging,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response  string       `json:"response"`
	SessionID string       `json:"session_id"`
	Trace     domain.Trace `json:"trace"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		badRequest(w, "message is required")
		return
	}

	out, err := s.svc.SendMessage(
		r.Context(),
		chat.SendMessageInput{
			SessionID: domain.SessionID(req.SessionID),
			Message:   req.Message,
		},
	)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  out.Response,
		SessionID: string(out.SessionID),
		Trace:     out.Trace,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
