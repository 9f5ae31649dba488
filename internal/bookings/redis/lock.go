package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis serializes booking decisions per venue. An admin deciding a booking
// holds venue_lock:<venueID> for the conflict-check-and-write window, so two
// approvals on the same venue never interleave, even across instances.
type Redis struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{
		Client: client,
		Logger: log.Default(),
	}
}

// getVenueLockDuration returns the lock TTL. The TTL is a liveness backstop:
// a crashed holder must not block a venue forever.
func (r *Redis) getVenueLockDuration() time.Duration {
	defaultDuration := 30 * time.Second

	lockTTLStr := os.Getenv("VENUE_LOCK_TTL_SECONDS")
	if lockTTLStr == "" {
		return defaultDuration
	}

	lockTTLSec, err := strconv.Atoi(lockTTLStr)
	if err != nil {
		r.Logger.Println("REDIS: Invalid VENUE_LOCK_TTL_SECONDS value '" + lockTTLStr + "', using default 30 seconds")
		return defaultDuration
	}

	return time.Duration(lockTTLSec) * time.Second
}

// LockVenue takes the decision lock for a venue on behalf of a booking.
// Returns false when another decision currently holds it.
func (r *Redis) LockVenue(venueID, bookingID string) (bool, error) {
	key := "venue_lock:" + venueID
	ok, err := r.Client.SetNX(context.Background(), key, bookingID, r.getVenueLockDuration()).Result()
	return ok, err
}

// UnlockVenue releases the lock only if this booking still owns it, so an
// expired-and-reacquired lock is never released by the old holder.
func (r *Redis) UnlockVenue(venueID, bookingID string) error {
	ctx := context.Background()
	key := fmt.Sprintf("venue_lock:%s", venueID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already released or expired
	}
	if err != nil {
		return err
	}
	if val == bookingID {
		_, err := r.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
