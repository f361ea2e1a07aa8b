// Package queue dispatches notification jobs to the external delivery
// workers. Enqueueing is fire-and-forget from the auth core's perspective:
// delivery, retry scheduling, and worker execution live elsewhere.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Queue names.
const (
	AuthNotification = "auth-notification"
)

// Event types carried by auth notification jobs.
const (
	EventVerifyOTP            = "verify_otp"
	EventWelcomeEmail         = "welcome_email"
	EventAccountDeletionEmail = "account_deletion_email"
)

// Priority orders jobs within a queue, 1 highest.
type Priority int

const (
	PriorityHighest Priority = iota + 1
	PriorityHigh
	PriorityMediumHigh
	PriorityMedium
	PriorityMediumLow
	PriorityLow
	PriorityLowest
)

// Dispatcher is the narrow interface the auth services consume.
type Dispatcher interface {
	Enqueue(ctx context.Context, queueName, eventType string, payload any, priority Priority) error
}

// RedisDispatcher appends jobs to a Redis stream per queue. Workers consume
// via consumer groups; this side never reads.
type RedisDispatcher struct {
	client *redis.Client
}

func NewRedisDispatcher(client *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{client: client}
}

func streamFor(queueName string) string { return "queue:" + queueName }

func (d *RedisDispatcher) Enqueue(
	ctx context.Context,
	queueName, eventType string,
	payload any,
	priority Priority,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: marshal %s payload: %w", eventType, err)
	}

	err = d.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamFor(queueName),
		Values: map[string]any{
			"event":    eventType,
			"payload":  string(body),
			"priority": int(priority),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("queue: enqueue %s on %s: %w", eventType, queueName, err)
	}
	return nil
}
