package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStorageGetSetDelete(t *testing.T) {
	storage := NewStorage()
	defer storage.Stop()

	if got := storage.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %v, want nil", got)
	}

	bucket := &Bucket{Tokens: 5, Capacity: 10, RefillRate: 1, LastRefill: time.Now()}
	storage.Set("key1", bucket)

	if got := storage.Get("key1"); got != bucket {
		t.Error("Get did not return the stored bucket")
	}

	storage.Delete("key1")
	if got := storage.Get("key1"); got != nil {
		t.Error("bucket still present after Delete")
	}
}

func TestStorageCleanupRemovesIdleBuckets(t *testing.T) {
	storage := NewStorage()
	defer storage.Stop()

	fresh := &Bucket{LastRefill: time.Now()}
	stale := &Bucket{LastRefill: time.Now().Add(-2 * time.Hour)}
	storage.Set("fresh", fresh)
	storage.Set("stale", stale)

	storage.cleanup()

	if storage.Get("fresh") == nil {
		t.Error("fresh bucket was removed")
	}
	if storage.Get("stale") != nil {
		t.Error("stale bucket was not removed")
	}
}

func TestStorageConcurrentAccess(t *testing.T) {
	storage := NewStorage()
	defer storage.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			storage.Set(key, &Bucket{LastRefill: time.Now()})
			storage.Get(key)
		}(i)
	}
	wg.Wait()

	if count := storage.Count(); count != 5 {
		t.Errorf("Count() = %d, want 5", count)
	}
}
