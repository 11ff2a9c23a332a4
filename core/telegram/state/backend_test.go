package state

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/menfes/core/database"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

func cleanupRedis(t *testing.T, client *redis.Client, prefix string) {
	ctx := context.Background()
	iter := client.Scan(ctx, 0, prefix+":*", 1000).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	require.NoError(t, iter.Err())
	if len(keys) > 0 {
		require.NoError(t, client.Del(ctx, keys...).Err())
	}
	_ = client.Close()
}

func postgresDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil
	}
	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(context.Background(), db))
	return db
}

func backendFactories(t *testing.T) map[string]Backend {
	backends := map[string]Backend{"Memory": NewMemoryBackend()}

	if client := redisClient(t); client != nil {
		prefix := "test-state-" + uuid.New().String()
		t.Cleanup(func() { cleanupRedis(t, client, prefix) })
		backends["Redis"] = NewRedisBackend(client, prefix)
	}
	if db := postgresDB(t); db != nil {
		t.Cleanup(func() { _ = db.Close() })
		backends["Postgres"] = NewPostgresBackend(db)
	}
	return backends
}

// testUserID keeps parallel runs against shared servers from colliding.
func testUserID() int64 {
	return rand.Int63n(1<<40) + 1
}

func TestBackendContract(t *testing.T) {
	for name, b := range backendFactories(t) {
		t.Run(name+"_RoundTrip", func(t *testing.T) {
			ctx := context.Background()
			id := testUserID()

			_, err := b.Load(ctx, id)
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Save(ctx, id, []byte(`{"kind":"awaiting"}`), time.Hour))
			got, err := b.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, `{"kind":"awaiting"}`, string(got))

			require.NoError(t, b.Save(ctx, id, []byte(`{"kind":"choosing_language"}`), time.Hour))
			got, err = b.Load(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, `{"kind":"choosing_language"}`, string(got))

			require.NoError(t, b.Delete(ctx, id))
			_, err = b.Load(ctx, id)
			require.ErrorIs(t, err, ErrNotFound)
		})

		t.Run(name+"_DeleteMissing", func(t *testing.T) {
			require.NoError(t, b.Delete(context.Background(), testUserID()))
		})

		t.Run(name+"_UsersIsolated", func(t *testing.T) {
			ctx := context.Background()
			a, c := testUserID(), testUserID()
			require.NoError(t, b.Save(ctx, a, []byte("a"), time.Hour))
			require.NoError(t, b.Save(ctx, c, []byte("c"), time.Hour))
			require.NoError(t, b.Delete(ctx, a))

			got, err := b.Load(ctx, c)
			require.NoError(t, err)
			assert.Equal(t, "c", string(got))
			require.NoError(t, b.Delete(ctx, c))
		})

		t.Run(name+"_Concurrent", func(t *testing.T) {
			ctx := context.Background()
			base := testUserID()
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					id := base + int64(i)
					assert.NoError(t, b.Save(ctx, id, []byte(fmt.Sprint(i)), time.Hour))
					got, err := b.Load(ctx, id)
					assert.NoError(t, err)
					assert.Equal(t, fmt.Sprint(i), string(got))
					assert.NoError(t, b.Delete(ctx, id))
				}(i)
			}
			wg.Wait()
		})
	}
}

func TestMemoryBackendExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemoryBackend()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Save(ctx, 1, []byte("short"), time.Minute))
	require.NoError(t, m.Save(ctx, 2, []byte("forever"), 0))

	now = now.Add(2 * time.Minute)
	_, err := m.Load(ctx, 1)
	require.ErrorIs(t, err, ErrNotFound)
	got, err := m.Load(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "forever", string(got))

	assert.Equal(t, 2, m.Len())
	n, err := m.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryBackendCopiesRecords(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend()
	rec := []byte("abc")
	require.NoError(t, m.Save(ctx, 1, rec, 0))
	rec[0] = 'x'

	got, err := m.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	got[0] = 'y'

	again, err := m.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestRedisBackendExpires(t *testing.T) {
	client := redisClient(t)
	if client == nil {
		t.Skip("Skipping Redis tests: server unreachable")
	}
	prefix := "test-state-" + uuid.New().String()
	defer cleanupRedis(t, client, prefix)

	ctx := context.Background()
	b := NewRedisBackend(client, prefix)
	require.NoError(t, b.Save(ctx, 7, []byte("x"), time.Minute))

	ttl, err := client.TTL(ctx, b.key(7)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

type countingSweeper struct {
	*MemoryBackend
	mu    sync.Mutex
	calls int
}

func (c *countingSweeper) Sweep(ctx context.Context) (int, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.MemoryBackend.Sweep(ctx)
}

func (c *countingSweeper) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestRunJanitorSweepsUntilCancelled(t *testing.T) {
	sw := &countingSweeper{MemoryBackend: NewMemoryBackend()}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunJanitor(ctx, sw, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return sw.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

func TestRunJanitorSkipsNonSweepers(t *testing.T) {
	done := make(chan struct{})
	go func() {
		RunJanitor(context.Background(), &RedisBackend{}, time.Millisecond)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor should return for backends without Sweep")
	}
}
