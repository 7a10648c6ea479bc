// internal/infrastructure/database/redis/presence.go
package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const presenceKey = "chat:online"

// Presence mirrors live relay connections into a Redis sorted set scored by
// last-seen time. Members not seen within ttl are treated as gone.
type Presence struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

// NewPresence creates a presence tracker
func NewPresence(rdb redis.Cmdable, ttl time.Duration) *Presence {
	return &Presence{rdb: rdb, ttl: ttl, now: time.Now}
}

// Online marks a user as connected
func (p *Presence) Online(ctx context.Context, userID uuid.UUID) error {
	return p.seen(ctx, userID)
}

// Touch refreshes a connected user's last-seen time
func (p *Presence) Touch(ctx context.Context, userID uuid.UUID) error {
	return p.seen(ctx, userID)
}

func (p *Presence) seen(ctx context.Context, userID uuid.UUID) error {
	return p.rdb.ZAdd(ctx, presenceKey, redis.Z{
		Score:  float64(p.now().UnixMilli()),
		Member: userID.String(),
	}).Err()
}

// Offline marks a user as disconnected
func (p *Presence) Offline(ctx context.Context, userID uuid.UUID) error {
	return p.rdb.ZRem(ctx, presenceKey, userID.String()).Err()
}

// Members prunes stale entries and lists users currently marked online
func (p *Presence) Members(ctx context.Context) ([]uuid.UUID, error) {
	if p.ttl > 0 {
		cutoff := p.now().Add(-p.ttl).UnixMilli()
		if err := p.rdb.ZRemRangeByScore(ctx, presenceKey, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
			return nil, err
		}
	}

	raw, err := p.rdb.ZRange(ctx, presenceKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out, nil
}
