package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	return &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
}

func TestNotifyUpdate_PublishesPayload(t *testing.T) {
	rs := newTestRedisStore(t)
	ctx := context.Background()

	sub := rs.Client.Subscribe(ctx, UpdateChannel)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, rs.NotifyUpdate(ctx, "campaign", "publish", "abc-123"))

	select {
	case msg := <-sub.Channel():
		var got UpdateMessage
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, UpdateMessage{Entity: "campaign", Action: "publish", ID: "abc-123"}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update message")
	}
}

func TestNotifyUpdate_NilStoreIsSafe(t *testing.T) {
	var rs *RedisStore
	assert.NoError(t, rs.NotifyUpdate(context.Background(), "campaign", "create", "x"))

	empty := &RedisStore{}
	assert.NoError(t, empty.NotifyUpdate(context.Background(), "campaign", "create", "x"))
}
