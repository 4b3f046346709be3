package perscache

import (
	"github.com/vnykmshr/perscache-go/pkg/metrics"
	"github.com/vnykmshr/perscache-go/pkg/serializer"
	"github.com/vnykmshr/perscache-go/pkg/storage"
)

// config holds the per-decoration binding assembled from options.
type config struct {
	storage      storage.Storage
	serializer   serializer.Serializer
	hasher       ArgHasherFunc
	argNames     []string
	skipArgs     []string
	logger       Logger
	hooks        *Hooks
	exporter     metrics.Exporter
	singleflight bool
	tagReuse     bool
}

// Option configures a single decorated function.
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{
		logger: NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithStorage binds the decorated function to a specific storage
// backend. The same instance may be shared by many decorated
// functions. Defaults to the process-wide SQLite store.
func WithStorage(s storage.Storage) Option {
	return func(cfg *config) {
		cfg.storage = s
	}
}

// WithSerializer binds the decorated function to a specific value
// serializer. Defaults to the process-wide msgpack serializer.
func WithSerializer(s serializer.Serializer) Option {
	return func(cfg *config) {
		cfg.serializer = s
	}
}

// WithArgHasher replaces the canonical hasher with a custom one. The
// supplied function is used as-is; WithArgNames and WithSkipArgs are
// ignored when it is set.
func WithArgHasher(h ArgHasherFunc) Option {
	return func(cfg *config) {
		cfg.hasher = h
	}
}

// WithArgNames names the decorated function's hashed parameters in
// positional order (a leading context.Context is not named). Go
// reflection cannot recover parameter names, so supplying them is the
// way to make WithSkipArgs read naturally; without this option
// arguments are named arg0..argN.
func WithArgNames(names ...string) Option {
	return func(cfg *config) {
		cfg.argNames = names
	}
}

// WithSkipArgs excludes the named arguments from fingerprinting, for
// parameters that are unhashable or irrelevant to the result (clients,
// loggers, progress callbacks). Names resolve against WithArgNames or
// the positional arg0..argN defaults.
func WithSkipArgs(names ...string) Option {
	return func(cfg *config) {
		cfg.skipArgs = names
	}
}

// WithLogger attaches a logger. Hits and misses log at Debug, write
// failures at Error. Defaults to a no-op logger.
func WithLogger(l Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithHooks attaches event callbacks to the decorated function.
func WithHooks(h *Hooks) Option {
	return func(cfg *config) {
		cfg.hooks = h
	}
}

// WithMetrics attaches a metrics exporter recording events and phase
// durations labeled with the decorated function's tag.
func WithMetrics(e metrics.Exporter) Option {
	return func(cfg *config) {
		cfg.exporter = e
	}
}

// WithSingleflight suppresses duplicate concurrent computations: when
// several goroutines miss on the same fingerprint at once, one invokes
// the wrapped function and the rest wait for its result. Off by
// default; without it concurrent misses all compute and the last write
// wins.
func WithSingleflight() Option {
	return func(cfg *config) {
		cfg.singleflight = true
	}
}

// WithTagReuse allows decorating more than one function with the same
// tag. Without it a duplicate tag panics at decoration time, since two
// functions sharing a namespace is almost always a copy-paste mistake.
func WithTagReuse() Option {
	return func(cfg *config) {
		cfg.tagReuse = true
	}
}
