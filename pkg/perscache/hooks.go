package perscache

// Hooks defines event callbacks for decorated calls. All hooks run
// synchronously on the calling goroutine, in registration order.
type Hooks struct {
	// OnHit is called when a call is served from storage
	OnHit []OnHitHook

	// OnMiss is called when a call must invoke the wrapped function
	OnMiss []OnMissHook

	// OnStore is called after a freshly computed result is persisted
	OnStore []OnStoreHook

	// OnError is called when encoding or persisting a result fails
	OnError []OnErrorHook
}

// Hook function type definitions
type (
	// OnHitHook receives the tag and argument fingerprint of a hit
	OnHitHook func(tag string, key []byte)

	// OnMissHook receives the tag and argument fingerprint of a miss
	OnMissHook func(tag string, key []byte)

	// OnStoreHook receives the tag, fingerprint and stored blob size
	OnStoreHook func(tag string, key []byte, size int)

	// OnErrorHook receives the tag, fingerprint and failure
	OnErrorHook func(tag string, key []byte, err error)
)

// AddOnHit registers a hit hook
func (h *Hooks) AddOnHit(hook OnHitHook) {
	h.OnHit = append(h.OnHit, hook)
}

// AddOnMiss registers a miss hook
func (h *Hooks) AddOnMiss(hook OnMissHook) {
	h.OnMiss = append(h.OnMiss, hook)
}

// AddOnStore registers a store hook
func (h *Hooks) AddOnStore(hook OnStoreHook) {
	h.OnStore = append(h.OnStore, hook)
}

// AddOnError registers an error hook
func (h *Hooks) AddOnError(hook OnErrorHook) {
	h.OnError = append(h.OnError, hook)
}

func (h *Hooks) invokeOnHit(tag string, key []byte) {
	if h == nil {
		return
	}
	for _, hook := range h.OnHit {
		hook(tag, key)
	}
}

func (h *Hooks) invokeOnMiss(tag string, key []byte) {
	if h == nil {
		return
	}
	for _, hook := range h.OnMiss {
		hook(tag, key)
	}
}

func (h *Hooks) invokeOnStore(tag string, key []byte, size int) {
	if h == nil {
		return
	}
	for _, hook := range h.OnStore {
		hook(tag, key, size)
	}
}

func (h *Hooks) invokeOnError(tag string, key []byte, err error) {
	if h == nil {
		return
	}
	for _, hook := range h.OnError {
		hook(tag, key, err)
	}
}
