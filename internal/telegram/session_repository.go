package telegram

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"ai-weekly-planner/internal/item"
	"ai-weekly-planner/internal/logger"
	"ai-weekly-planner/internal/storage"
)

// Session remembers the new item last suggested to a user, so that /adopt
// can save it.
type Session struct {
	UserID    int64      `json:"user_id"`
	Request   string     `json:"request"`
	Pending   item.Draft `json:"pending"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type sessionMap map[string]Session

// SessionRepository keeps one active session per user. Sessions survive
// restarts through the persister.
type SessionRepository struct {
	mu        sync.Mutex
	sessions  sessionMap
	persister *storage.Snapshot[sessionMap]
	ttl       time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// NewSessionRepository loads the stored sessions. A nil kv keeps sessions in
// memory only.
func NewSessionRepository(ctx context.Context, kv storage.KV, key string, ttl time.Duration, log *logger.Logger) *SessionRepository {
	if log == nil {
		log = logger.NewNop()
	}
	sr := &SessionRepository{
		sessions: sessionMap{},
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
	if kv == nil {
		return sr
	}
	sr.persister = storage.NewSnapshot[sessionMap](kv, key)
	loaded, err := sr.persister.Load(ctx)
	switch {
	case err == nil:
		if loaded != nil {
			sr.sessions = loaded
		}
	case errors.Is(err, storage.ErrNotFound):
	default:
		log.Warn("failed to load sessions, starting empty", "error", err)
	}
	return sr
}

// Create stores a pending suggestion for a user, replacing any previous one.
func (sr *SessionRepository) Create(ctx context.Context, userID int64, request string, pending item.Draft) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	now := sr.now()
	sr.sessions[key(userID)] = Session{
		UserID:    userID,
		Request:   request,
		Pending:   pending,
		ExpiresAt: now.Add(sr.ttl),
		CreatedAt: now,
	}
	sr.persistLocked(ctx)
}

// GetActive returns the user's session if it has not expired.
func (sr *SessionRepository) GetActive(userID int64) (Session, bool) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	s, ok := sr.sessions[key(userID)]
	if !ok || !sr.now().Before(s.ExpiresAt) {
		return Session{}, false
	}
	return s, true
}

// Delete removes the user's session.
func (sr *SessionRepository) Delete(ctx context.Context, userID int64) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if _, ok := sr.sessions[key(userID)]; !ok {
		return
	}
	delete(sr.sessions, key(userID))
	sr.persistLocked(ctx)
}

// CleanupExpired removes all expired sessions and reports how many went.
func (sr *SessionRepository) CleanupExpired(ctx context.Context) int {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	now := sr.now()
	removed := 0
	for k, s := range sr.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(sr.sessions, k)
			removed++
		}
	}
	if removed > 0 {
		sr.persistLocked(ctx)
	}
	return removed
}

func (sr *SessionRepository) persistLocked(ctx context.Context) {
	if sr.persister == nil {
		return
	}
	cp := make(sessionMap, len(sr.sessions))
	for k, v := range sr.sessions {
		cp[k] = v
	}
	if err := sr.persister.Save(ctx, cp); err != nil {
		sr.log.Warn("failed to persist sessions", "error", err)
	}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
