package domain

// SessionStore defines session and turn persistence.
type SessionStore interface {
	// GetOrCreateSession returns the session with the given id, creating it
	// on first use. Sessions live for the configured TTL.
	GetOrCreateSession(id SessionID) (*Session, error)

	// AppendTurn adds a turn to the end of the session's timeline.
	AppendTurn(turn *Turn) error

	// GetTurns returns the session's timeline in append order. limit > 0
	// returns only the most recent turns.
	GetTurns(sessionID SessionID, limit int) ([]*Turn, error)

	// TouchSession refreshes the session's UpdatedAt so it survives eviction.
	TouchSession(id SessionID) error
}
