package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

const sessionKeyPrefix = "planner:session:"

type jsonStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SessionRepository keeps per-session schedule state in a key/value store.
// Each save refreshes the TTL.
type SessionRepository struct {
	store jsonStore
	ttl   time.Duration
}

// NewSessionRepository constructs the repository over Redis or the in-memory store.
func NewSessionRepository(store jsonStore, ttl time.Duration) *SessionRepository {
	return &SessionRepository{store: store, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Load returns the stored state, or an empty state for a session that has not
// saved anything yet.
func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*models.SessionState, error) {
	var state models.SessionState
	if err := r.store.Get(ctx, sessionKey(sessionID), &state); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return &models.SessionState{Colors: map[string]string{}}, nil
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if state.Colors == nil {
		state.Colors = map[string]string{}
	}
	return &state, nil
}

// Save persists the state and stamps UpdatedAt.
func (r *SessionRepository) Save(ctx context.Context, sessionID string, state *models.SessionState) error {
	state.UpdatedAt = time.Now().UTC()
	if err := r.store.Set(ctx, sessionKey(sessionID), state, r.ttl); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// Delete drops the stored state.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.store.Delete(ctx, sessionKey(sessionID)); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}
