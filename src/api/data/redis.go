package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix      = "nonce:"
	streamGovernance = "civicchain.governance"
	streamEvents     = "civicchain.events"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetNonce(ctx context.Context, rdb *redis.Client, addr, nonce string) error {
	return rdb.Set(ctx, noncePrefix+addr, nonce, 5*time.Minute).Err()
}

func GetAndDelNonce(ctx context.Context, rdb *redis.Client, addr string) (string, error) {
	return rdb.GetDel(ctx, noncePrefix+addr).Result()
}

// PublishGovernance pushes a governance event (proposal created, tally
// updated, status changed, complaint filed) onto the activity stream the
// community feed tails.
func PublishGovernance(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamGovernance,
		Values: payload,
	}).Result()
	return err
}

// PublishEventChat appends a chat line to an event's discussion stream.
func PublishEventChat(ctx context.Context, rdb *redis.Client, eventID, author, body string) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents + "." + eventID,
		Values: map[string]interface{}{"author": author, "body": body},
	}).Result()
	return err
}
