package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*RedisDispatcher, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisDispatcher(client), client
}

func TestEnqueueAppendsToStream(t *testing.T) {
	t.Parallel()

	d, client := newTestDispatcher(t)
	ctx := context.Background()

	payload := VerifyOTPPayload{Email: "alice@campus.edu", OTP: 123456}
	require.NoError(t, d.Enqueue(ctx, AuthNotification, EventVerifyOTP, payload, PriorityHighest))

	entries, err := client.XRange(ctx, "queue:auth-notification", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Equal(t, EventVerifyOTP, entries[0].Values["event"])
	require.Equal(t, "1", entries[0].Values["priority"])

	var got VerifyOTPPayload
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &got))
	require.Equal(t, payload, got)
}

func TestEnqueuePreservesOrderPerQueue(t *testing.T) {
	t.Parallel()

	d, client := newTestDispatcher(t)
	ctx := context.Background()

	events := []string{EventVerifyOTP, EventWelcomeEmail, EventAccountDeletionEmail}
	for _, ev := range events {
		require.NoError(t, d.Enqueue(ctx, AuthNotification, ev, map[string]string{}, PriorityMedium))
	}

	entries, err := client.XRange(ctx, "queue:auth-notification", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, ev := range events {
		require.Equal(t, ev, entries[i].Values["event"])
	}
}
