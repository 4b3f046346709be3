package perscache

import (
	"sync/atomic"
)

// Stats holds per-tag cache statistics. All counters are safe for
// concurrent use.
type Stats struct {
	// hits is the number of calls served from storage
	hits int64

	// misses is the number of calls that invoked the wrapped function
	misses int64

	// decodeMisses is the subset of misses caused by an entry that
	// existed but could not be decoded
	decodeMisses int64

	// stores is the number of results persisted
	stores int64

	// storeErrors is the number of encode or write failures
	storeErrors int64

	// inFlight is the number of wrapped invocations currently running
	inFlight int64
}

// Hits returns the number of calls served from storage
func (s *Stats) Hits() int64 {
	return atomic.LoadInt64(&s.hits)
}

// Misses returns the number of calls that invoked the wrapped function
func (s *Stats) Misses() int64 {
	return atomic.LoadInt64(&s.misses)
}

// DecodeMisses returns the number of misses caused by undecodable entries
func (s *Stats) DecodeMisses() int64 {
	return atomic.LoadInt64(&s.decodeMisses)
}

// Stores returns the number of results persisted
func (s *Stats) Stores() int64 {
	return atomic.LoadInt64(&s.stores)
}

// StoreErrors returns the number of encode or write failures
func (s *Stats) StoreErrors() int64 {
	return atomic.LoadInt64(&s.storeErrors)
}

// InFlight returns the number of wrapped invocations currently running
func (s *Stats) InFlight() int64 {
	return atomic.LoadInt64(&s.inFlight)
}

// Total returns the total number of decorated calls (hits + misses)
func (s *Stats) Total() int64 {
	return s.Hits() + s.Misses()
}

// HitRate returns the cache hit rate as a percentage (0-100)
func (s *Stats) HitRate() float64 {
	hits := s.Hits()
	total := hits + s.Misses()

	if total == 0 {
		return 0
	}

	return float64(hits) / float64(total) * 100
}

// Reset resets all statistics to zero
func (s *Stats) Reset() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
	atomic.StoreInt64(&s.decodeMisses, 0)
	atomic.StoreInt64(&s.stores, 0)
	atomic.StoreInt64(&s.storeErrors, 0)
	atomic.StoreInt64(&s.inFlight, 0)
}

func (s *Stats) incHits() {
	atomic.AddInt64(&s.hits, 1)
}

func (s *Stats) incMisses() {
	atomic.AddInt64(&s.misses, 1)
}

func (s *Stats) incDecodeMisses() {
	atomic.AddInt64(&s.decodeMisses, 1)
}

func (s *Stats) incStores() {
	atomic.AddInt64(&s.stores, 1)
}

func (s *Stats) incStoreErrors() {
	atomic.AddInt64(&s.storeErrors, 1)
}

func (s *Stats) incInFlight() {
	atomic.AddInt64(&s.inFlight, 1)
}

func (s *Stats) decInFlight() {
	atomic.AddInt64(&s.inFlight, -1)
}
