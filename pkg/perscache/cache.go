package perscache

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/vnykmshr/perscache-go/pkg/metrics"
	"github.com/vnykmshr/perscache-go/pkg/serializer"
	"github.com/vnykmshr/perscache-go/pkg/storage"
)

// Tags are checked for uniqueness within the process to catch
// copy-paste mistakes where two functions share a cache namespace.
var (
	tagMu       sync.Mutex
	tagRegistry = make(map[string]*Stats)
)

func registerTag(tag string, reuse bool) *Stats {
	tagMu.Lock()
	defer tagMu.Unlock()

	if stats, ok := tagRegistry[tag]; ok {
		if !reuse {
			panic(fmt.Sprintf("perscache: tag %q already registered for another function; use a unique tag per function, or WithTagReuse() to share one deliberately", tag))
		}
		return stats
	}
	stats := &Stats{}
	tagRegistry[tag] = stats
	return stats
}

// TagStats returns the statistics handle for a registered tag, or nil
// if no function was decorated with it.
func TagStats(tag string) *Stats {
	tagMu.Lock()
	defer tagMu.Unlock()
	return tagRegistry[tag]
}

// Process-wide defaults used when a decoration supplies no storage or
// serializer. They are built once and shared by reference, so every
// decorated function that relies on them hits the same store.
var (
	defaultsMu        sync.Mutex
	defaultStorage    storage.Storage
	defaultSerializer serializer.Serializer = serializer.NewMsgpack()
)

// SetDefaults replaces the process-wide default storage and/or
// serializer. Nil arguments leave the corresponding default untouched.
// Call it before decorating functions that should pick the new
// defaults up; decorations bind their storage and serializer once.
func SetDefaults(st storage.Storage, ser serializer.Serializer) {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if st != nil {
		defaultStorage = st
	}
	if ser != nil {
		defaultSerializer = ser
	}
}

// defaultStorageInstance lazily opens the shared SQLite store at
// ./.perscache/perscache.db. A failure to open it is a deployment
// problem surfaced at decoration time.
func defaultStorageInstance() storage.Storage {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if defaultStorage == nil {
		st, err := storage.NewSQLite("")
		if err != nil {
			panic(fmt.Sprintf("perscache: failed to open default sqlite storage: %v", err))
		}
		defaultStorage = st
	}
	return defaultStorage
}

func defaultSerializerInstance() serializer.Serializer {
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	return defaultSerializer
}

// binding is the resolved (tag, hasher, serializer, storage) tuple a
// decorated function closes over, plus its observability attachments.
type binding struct {
	tag        string
	storage    storage.Storage
	ctxStorage storage.ContextStorage
	serializer serializer.Serializer
	logger     Logger
	hooks      *Hooks
	stats      *Stats
	exporter   metrics.Exporter
}

func newBinding(tag string, cfg *config) *binding {
	b := &binding{
		tag:        tag,
		storage:    cfg.storage,
		serializer: cfg.serializer,
		logger:     cfg.logger,
		hooks:      cfg.hooks,
		stats:      registerTag(tag, cfg.tagReuse),
		exporter:   cfg.exporter,
	}
	if b.storage == nil {
		b.storage = defaultStorageInstance()
	}
	if b.serializer == nil {
		b.serializer = defaultSerializerInstance()
	}
	// Context-taking functions use the suspendable contract when the
	// backend offers one; blocking backends run inline by design.
	if cs, ok := b.storage.(storage.ContextStorage); ok {
		b.ctxStorage = cs
	}
	return b
}

func (b *binding) get(ctx context.Context, key []byte) ([]byte, bool, error) {
	start := time.Now()
	defer b.recordDuration(metrics.OperationLookup, start)

	if b.ctxStorage != nil && ctx != nil {
		return b.ctxStorage.GetContext(ctx, b.tag, key)
	}
	return b.storage.Get(b.tag, key)
}

func (b *binding) set(ctx context.Context, key, value []byte) error {
	start := time.Now()
	defer b.recordDuration(metrics.OperationStore, start)

	if b.ctxStorage != nil && ctx != nil {
		return b.ctxStorage.SetContext(ctx, b.tag, key, value)
	}
	return b.storage.Set(b.tag, key, value)
}

func (b *binding) hit(key []byte) {
	b.stats.incHits()
	b.hooks.invokeOnHit(b.tag, key)
	b.recordEvent(metrics.EventHit)
	b.logger.Debug("cache hit", F("tag", b.tag), F("key", hex.EncodeToString(key)))
}

func (b *binding) miss(key []byte) {
	b.stats.incMisses()
	b.hooks.invokeOnMiss(b.tag, key)
	b.recordEvent(metrics.EventMiss)
	b.logger.Debug("cache miss", F("tag", b.tag), F("key", hex.EncodeToString(key)))
}

func (b *binding) decodeMiss(key []byte, err error) {
	b.stats.incDecodeMisses()
	b.recordEvent(metrics.EventDecodeMiss)
	b.logger.Debug("stored entry not decodable, recomputing",
		F("tag", b.tag), F("key", hex.EncodeToString(key)), F("error", err))
}

func (b *binding) readFailed(key []byte, err error) {
	b.logger.Warn("cache read failed, treating as miss",
		F("tag", b.tag), F("key", hex.EncodeToString(key)), F("error", err))
}

func (b *binding) stored(key []byte, size int) {
	b.stats.incStores()
	b.hooks.invokeOnStore(b.tag, key, size)
	b.recordEvent(metrics.EventStore)
}

func (b *binding) storeFailed(key []byte, err error) {
	b.stats.incStoreErrors()
	b.hooks.invokeOnError(b.tag, key, err)
	b.recordEvent(metrics.EventStoreError)
	b.logger.Error("failed to persist result",
		F("tag", b.tag), F("key", hex.EncodeToString(key)), F("error", err))
}

func (b *binding) recordEvent(event metrics.Event) {
	if b.exporter != nil {
		_ = b.exporter.RecordEvent(b.tag, event)
	}
}

func (b *binding) recordDuration(op metrics.Operation, start time.Time) {
	if b.exporter != nil {
		_ = b.exporter.RecordDuration(b.tag, op, time.Since(start))
	}
}
