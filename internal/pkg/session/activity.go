// internal/pkg/session/activity.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"compliancehub-service/internal/domain/identity"

	"github.com/redis/go-redis/v9"
)

// Tracker keeps an observational record of signed-in sessions in Redis.
// It powers the admin active-sessions view and nothing else: token
// validity is decided by signature and expiry alone, never by lookups
// here. Records expire with the token they describe.
type Tracker struct {
	client *redis.Client
}

func NewTracker(client *redis.Client) *Tracker {
	return &Tracker{client: client}
}

// Record stores an active-session entry with a TTL matching the token expiry.
func (t *Tracker) Record(ctx context.Context, s *identity.ActiveSession) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session record: %w", err)
	}

	if err := t.client.Set(ctx, t.sessionKey(s.UserID, s.JTI), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session record: %w", err)
	}
	return nil
}

// Remove drops a session record on sign-out. Missing records are fine;
// sign-out is idempotent.
func (t *Tracker) Remove(ctx context.Context, userID, jti string) error {
	return t.client.Del(ctx, t.sessionKey(userID, jti)).Err()
}

// ListByUser returns all recorded sessions for one user.
func (t *Tracker) ListByUser(ctx context.Context, userID string) ([]*identity.ActiveSession, error) {
	return t.scan(ctx, fmt.Sprintf("session:%s:*", userID))
}

// ListAll returns every recorded session. Admin use only.
func (t *Tracker) ListAll(ctx context.Context) ([]*identity.ActiveSession, error) {
	return t.scan(ctx, "session:*")
}

func (t *Tracker) scan(ctx context.Context, pattern string) ([]*identity.ActiveSession, error) {
	var sessions []*identity.ActiveSession
	iter := t.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		data, err := t.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue // expired between scan and get
		}

		var s identity.ActiveSession
		if err := json.Unmarshal(data, &s); err != nil {
			continue
		}
		sessions = append(sessions, &s)
	}
	return sessions, iter.Err()
}

func (t *Tracker) sessionKey(userID, jti string) string {
	return fmt.Sprintf("session:%s:%s", userID, jti)
}
