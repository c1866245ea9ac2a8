package scanlog

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trustgate/pkg/platform/sentinel"
)

const keyPrefix = "trustgate:scanlog:"

// Redis implements the scan log with SET NX and a TTL equal to the replay
// window. SET NX is atomic server-side, so concurrent scans of the same
// payload resolve to exactly one first sighting across all instances.
type Redis struct {
	client *redis.Client
	window time.Duration
}

func NewRedis(client *redis.Client, window time.Duration) *Redis {
	return &Redis{client: client, window: window}
}

func (l *Redis) Touch(ctx context.Context, payloadHash string) (bool, error) {
	set, err := l.client.SetNX(ctx, keyPrefix+payloadHash, 1, l.window).Result()
	if err != nil {
		return false, fmt.Errorf("scan log touch: %w: %v", sentinel.ErrUnavailable, err)
	}
	return !set, nil
}
