package ratelimit

import (
	"sync"
	"time"
)

// Bucket represents a token bucket for rate limiting.
type Bucket struct {
	// Tokens is the current number of available tokens.
	Tokens float64

	// LastRefill is the timestamp of the last token refill.
	LastRefill time.Time

	// Capacity is the maximum number of tokens the bucket can hold.
	Capacity float64

	// RefillRate is the number of tokens added per second.
	RefillRate float64
}

const (
	cleanupInterval = 5 * time.Minute
	bucketExpiry    = time.Hour
)

// Storage provides thread-safe in-memory storage for rate limit buckets.
// Buckets idle for longer than bucketExpiry are removed by a background
// goroutine so one-off callers do not accumulate forever.
type Storage struct {
	buckets sync.Map
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewStorage creates a new rate limit storage and starts the cleanup goroutine.
func NewStorage() *Storage {
	s := &Storage{
		stopCh: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// Get retrieves a bucket by key. Returns nil if not found.
func (s *Storage) Get(key string) *Bucket {
	value, ok := s.buckets.Load(key)
	if !ok {
		return nil
	}
	bucket, _ := value.(*Bucket)
	return bucket
}

// Set stores or updates a bucket by key.
func (s *Storage) Set(key string, bucket *Bucket) {
	s.buckets.Store(key, bucket)
}

// Delete removes a bucket by key.
func (s *Storage) Delete(key string) {
	s.buckets.Delete(key)
}

func (s *Storage) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup removes buckets that have been idle longer than bucketExpiry.
func (s *Storage) cleanup() {
	threshold := time.Now().Add(-bucketExpiry)

	s.buckets.Range(func(key, value interface{}) bool {
		bucket, ok := value.(*Bucket)
		if ok && bucket.LastRefill.Before(threshold) {
			s.buckets.Delete(key)
		}
		return true
	})
}

// Stop gracefully stops the storage cleanup goroutine.
func (s *Storage) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// Count returns the number of buckets currently stored (for testing/monitoring).
func (s *Storage) Count() int {
	count := 0
	s.buckets.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}
