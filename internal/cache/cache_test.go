package cache_test

import (
	"context"
	"testing"
	"time"

	"workorder/internal/cache"
	"workorder/internal/models"
	"workorder/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	client := testutil.StartRedis(t)
	c := cache.NewRedisCache(client, time.Minute)
	ctx := context.Background()

	var got models.Task
	hit, err := c.Get(ctx, cache.TaskKey("task_1"), &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := models.Task{ID: "task_1", UserID: "user_1", TaskName: "fix leak", Tags: []string{"a"}}
	require.NoError(t, c.Set(ctx, cache.TaskKey("task_1"), want))

	hit, err = c.Get(ctx, cache.TaskKey("task_1"), &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, want.TaskName, got.TaskName)
	assert.Equal(t, want.Tags, got.Tags)

	ttl, err := client.TTL(ctx, cache.TaskKey("task_1")).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, client.Set(ctx, cache.UserKey("u"), "{broken", 0).Err())
	hit, err = c.Get(ctx, cache.UserKey("u"), &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Delete(ctx, cache.TaskKey("task_1")))
	hit, err = c.Get(ctx, cache.TaskKey("task_1"), &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNop(t *testing.T) {
	var c cache.Cache = cache.Nop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1))
	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "task:abc", cache.TaskKey("abc"))
	assert.Equal(t, "user:abc", cache.UserKey("abc"))
}
