package repositories

import (
	"chat-live/contract"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ contract.ICursorStore = (*RedisCursorRepository)(nil)

// RedisCursorRepository keeps named feed positions in Redis with SET EX,
// for deployments where cursors must outlive the Badger directory.
type RedisCursorRepository struct {
	client    redis.Cmdable
	log       *slog.Logger
	retention time.Duration
}

func NewRedisCursorRepository(client redis.Cmdable, log *slog.Logger, retention time.Duration) *RedisCursorRepository {
	return &RedisCursorRepository{client: client, log: log, retention: retention}
}

func (r *RedisCursorRepository) Load(ctx context.Context, name string) (uint64, bool, error) {
	raw, err := r.client.Get(ctx, string(cursorKey(name))).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	seq, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return seq, true, nil
}

func (r *RedisCursorRepository) Save(ctx context.Context, name string, seq uint64) error {
	return r.client.Set(ctx, string(cursorKey(name)), strconv.FormatUint(seq, 10), r.retention).Err()
}

func (r *RedisCursorRepository) Delete(ctx context.Context, name string) error {
	return r.client.Del(ctx, string(cursorKey(name))).Err()
}
