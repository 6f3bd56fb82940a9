package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	srv := miniredis.RunT(t)
	c, err := NewRedisCache("redis://"+srv.Addr(), 0)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCacheSetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v; want miss, nil", hit, err)
	}

	if err := c.Set(ctx, "games|a", []byte(`{"total":1}`), []string{"games"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "users|a", []byte("u"), []string{"users"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, hit, err := c.Get(ctx, "games|a")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v; want hit, nil", hit, err)
	}
	if string(got) != `{"total":1}` {
		t.Fatalf("Get returned %q", got)
	}

	if err := c.InvalidateGroup(ctx, "games"); err != nil {
		t.Fatalf("InvalidateGroup: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "games|a"); hit {
		t.Fatal("entry survived invalidation of its group")
	}
	if _, hit, _ := c.Get(ctx, "users|a"); !hit {
		t.Fatal("unrelated group was invalidated")
	}

	// Invalidating an empty or unknown group is not an error.
	if err := c.InvalidateGroup(ctx, "games"); err != nil {
		t.Fatalf("repeat InvalidateGroup: %v", err)
	}
}

// A Set racing an InvalidateGroup must never produce an entry that is alive
// but no longer a member of its group's set: such an orphan would be served
// forever, unreachable by every later invalidation.
func TestRedisCacheInvalidationNeverOrphansEntries(t *testing.T) {
	ctx := context.Background()
	c := newTestRedisCache(t)

	const writers = 4
	const rounds = 50

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		keys []string
	)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				key := fmt.Sprintf("games.list|user:%d|offset=%d", w, i)
				if err := c.Set(ctx, key, []byte("v"), []string{"games"}); err != nil {
					t.Errorf("Set %q: %v", key, err)
					return
				}
				mu.Lock()
				keys = append(keys, key)
				mu.Unlock()
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := c.InvalidateGroup(ctx, "games"); err != nil {
				t.Errorf("InvalidateGroup: %v", err)
				return
			}
		}
	}()
	wg.Wait()

	// After one final invalidation every key written during the storm must
	// be gone, whichever side of an invalidation its Set landed on.
	if err := c.InvalidateGroup(ctx, "games"); err != nil {
		t.Fatalf("final InvalidateGroup: %v", err)
	}
	for _, key := range keys {
		if _, hit, err := c.Get(ctx, key); err != nil {
			t.Fatalf("Get %q: %v", key, err)
		} else if hit {
			t.Fatalf("key %q survived the final group invalidation", key)
		}
	}
}
