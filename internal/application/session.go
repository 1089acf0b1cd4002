package application

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pokebase/pokebase-api/internal/domain/entity"
)

// Session is the server-side view of a logged-in user.
type Session struct {
	UserID        string
	SessionID     string
	Email         string
	Name          string
	Image         string
	EmailVerified bool
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SessionStore keeps one session hash per user in Redis. A nil Redis client
// turns every method into a no-op and Get into ErrSessionNotFound.
type SessionStore struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{Redis: rdb, TTL: ttl}
}

func (s *SessionStore) Enabled() bool { return s != nil && s.Redis != nil }

// Put replaces the user's session with a fresh one bound to sid.
func (s *SessionStore) Put(ctx context.Context, u *entity.User, sid string) error {
	if !s.Enabled() {
		return nil
	}
	key := sessionKey(u.ID)
	pipe := s.Redis.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":        u.ID,
		"email":          u.Email,
		"name":           u.Name,
		"image":          u.Image,
		"sid":            sid,
		"email_verified": strconv.FormatBool(u.IsVerified()),
		"created_at":     nowRFC3339(),
	})
	pipe.Expire(ctx, key, s.TTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*Session, error) {
	if !s.Enabled() {
		return nil, ErrSessionNotFound
	}
	data, err := s.Redis.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrSessionNotFound
	}
	verified, _ := strconv.ParseBool(data["email_verified"])
	return &Session{
		UserID:        data["user_id"],
		SessionID:     data["sid"],
		Email:         data["email"],
		Name:          data["name"],
		Image:         data["image"],
		EmailVerified: verified,
	}, nil
}

// Rotate swaps the session id, keeping the remaining fields and TTL window.
func (s *SessionStore) Rotate(ctx context.Context, userID, sid string) error {
	return s.update(ctx, userID, map[string]any{"sid": sid}, true)
}

// Refresh copies profile fields into an existing session, preserving its TTL.
func (s *SessionStore) Refresh(ctx context.Context, u *entity.User) error {
	return s.update(ctx, u.ID, map[string]any{
		"email":          u.Email,
		"name":           u.Name,
		"image":          u.Image,
		"email_verified": strconv.FormatBool(u.IsVerified()),
	}, false)
}

func (s *SessionStore) update(ctx context.Context, userID string, fields map[string]any, resetTTL bool) error {
	if !s.Enabled() {
		return nil
	}
	key := sessionKey(userID)
	n, err := s.Redis.Exists(ctx, key).Result()
	if err != nil || n == 0 {
		return err
	}
	fields["updated_at"] = nowRFC3339()
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, fields)
	if resetTTL {
		pipe.Expire(ctx, key, s.TTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if !s.Enabled() {
		return nil
	}
	return s.Redis.Del(ctx, sessionKey(userID)).Err()
}
