// Package cache holds the persist-retry stash. When the upload pipeline
// fails in its final phase the blob and translation handle are already
// consumed; the stash keeps them for a bounded window so the caller can
// retry persistence alone instead of re-uploading and re-translating.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/buildvault/bimlibrary/internal/config"
	"github.com/buildvault/bimlibrary/internal/pkg/apperr"
)

const stashTTL = 24 * time.Hour

// PendingPersist is everything needed to rerun the Persisting phase of an
// upload without touching storage or the translation service again.
type PendingPersist struct {
	Mode              string    `json:"mode"` // "create" or "version"
	TenantID          uuid.UUID `json:"tenant_id"`
	AssetID           uuid.UUID `json:"asset_id,omitempty"` // version mode
	ProjectID         uuid.UUID `json:"project_id,omitempty"`
	DisciplineID      uuid.UUID `json:"discipline_id,omitempty"`
	CompanyID         uuid.UUID `json:"company_id,omitempty"`
	DisplayName       string    `json:"display_name,omitempty"`
	StorageBucket     string    `json:"storage_bucket"`
	StorageKey        string    `json:"storage_key"`
	TranslationHandle string    `json:"translation_handle"`
	SizeBytes         int64     `json:"size_bytes"`
	ContentType       string    `json:"content_type"`
}

// Stash stores pending persists keyed by an opaque stash key, scoped per
// tenant so one tenant can never replay another's payload.
type Stash interface {
	Put(ctx context.Context, tenantID uuid.UUID, p PendingPersist) (string, error)
	Take(ctx context.Context, tenantID uuid.UUID, key string) (*PendingPersist, error)
}

type redisStash struct {
	rdb *redis.Client
}

func NewRedis(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if cfg.Telemetry.Enabled {
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			return nil, fmt.Errorf("instrument redis tracing: %w", err)
		}
	}
	return rdb, nil
}

func NewStash(rdb *redis.Client) Stash {
	return &redisStash{rdb: rdb}
}

func stashKey(tenantID uuid.UUID, key string) string {
	return fmt.Sprintf("bim:persist:%s:%s", tenantID, key)
}

func (s *redisStash) Put(ctx context.Context, tenantID uuid.UUID, p PendingPersist) (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()
	if err := s.rdb.Set(ctx, stashKey(tenantID, key), b, stashTTL).Err(); err != nil {
		return "", err
	}
	return key, nil
}

// Take removes and returns the stashed payload. Removal first means a
// concurrent double-retry persists at most once.
func (s *redisStash) Take(ctx context.Context, tenantID uuid.UUID, key string) (*PendingPersist, error) {
	b, err := s.rdb.GetDel(ctx, stashKey(tenantID, key)).Bytes()
	if err == redis.Nil {
		return nil, apperr.NotFound("no pending persist for key")
	}
	if err != nil {
		return nil, err
	}
	var p PendingPersist
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
