package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/meridian/internal/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"
)

// ErrNoUpload is returned when a session has no stored upload or it has expired.
var ErrNoUpload = errors.New("no upload stored for session")

// Interface is the storage of the latest upload per browser session.
type Interface interface {
	SaveUpload(ctx context.Context, sessionID string, upload models.Upload) error
	LatestUpload(ctx context.Context, sessionID string) (*models.Upload, error)
	Purge(ctx context.Context) int
}

// Repository keeps uploads in a bounded in-memory LRU. Entries older than the
// TTL are treated as absent and removed on access or by Purge. Nothing
// survives a process restart.
type Repository struct {
	cache *lru.Cache[string, models.Upload]
	clock clockwork.Clock
	ttl   time.Duration
	log   *slog.Logger
}

// NewRepository creates a new instance of Repository holding at most capacity sessions.
// It returns an error if capacity is not positive.
func NewRepository(capacity int, ttl time.Duration, clock clockwork.Clock, log *slog.Logger) (*Repository, error) {
	cache, err := lru.New[string, models.Upload](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload cache: %w", err)
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Repository{cache: cache, clock: clock, ttl: ttl, log: log}, nil
}

// SaveUpload replaces the session's upload. UploadedAt is stamped with the repository clock.
func (r *Repository) SaveUpload(ctx context.Context, sessionID string, upload models.Upload) error {
	if sessionID == "" {
		return errors.New("failed to save upload: empty session id")
	}

	upload.UploadedAt = r.clock.Now()
	if evicted := r.cache.Add(sessionID, upload); evicted {
		r.log.DebugContext(ctx, "Upload cache full, evicted least recently used session")
	}
	r.log.DebugContext(ctx, "Upload stored", "session", sessionID, "file", upload.Filename, "bytes", len(upload.Data))

	return nil
}

// LatestUpload returns the session's upload, or ErrNoUpload if there is none or it expired.
func (r *Repository) LatestUpload(ctx context.Context, sessionID string) (*models.Upload, error) {
	upload, ok := r.cache.Get(sessionID)
	if !ok {
		return nil, ErrNoUpload
	}
	if r.expired(upload) {
		r.cache.Remove(sessionID)
		r.log.DebugContext(ctx, "Upload expired", "session", sessionID)
		return nil, ErrNoUpload
	}

	return &upload, nil
}

// Purge removes every expired upload and returns the number of sessions left.
func (r *Repository) Purge(ctx context.Context) int {
	removed := 0
	for _, sessionID := range r.cache.Keys() {
		upload, ok := r.cache.Peek(sessionID)
		if ok && r.expired(upload) {
			r.cache.Remove(sessionID)
			removed++
		}
	}
	if removed > 0 {
		r.log.InfoContext(ctx, "Expired uploads purged", "removed", removed)
	}

	return r.cache.Len()
}

func (r *Repository) expired(upload models.Upload) bool {
	return r.ttl > 0 && r.clock.Since(upload.UploadedAt) > r.ttl
}
