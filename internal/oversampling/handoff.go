package oversampling

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Pair is the wet and dry oversampler of one configuration. Both share the
// same filters so the two paths stay time aligned.
type Pair struct {
	Wet *Oversampler
	Dry *Oversampler
}

// NewPair builds two identically configured oversamplers.
func NewPair(cfg Config) (*Pair, error) {
	wet, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("wet oversampler: %w", err)
	}
	dry, err := New(cfg)
	if err != nil {
		return nil, fmt.Errorf("dry oversampler: %w", err)
	}
	return &Pair{Wet: wet, Dry: dry}, nil
}

// Config returns the pair's configuration.
func (p *Pair) Config() Config { return p.Wet.Config() }

// Reset clears both oversamplers.
func (p *Pair) Reset() {
	p.Wet.Reset()
	p.Dry.Reset()
}

// Builder constructs a pair for a configuration. It runs off the audio thread.
type Builder func(Config) (*Pair, error)

// Handoff moves freshly built pairs to the audio thread without locks.
//
// Request builds on a worker goroutine and stores the result in an atomic
// slot. The audio thread calls Acquire at the start of each block, which
// swaps in a pending pair if there is one and otherwise keeps the current
// pair. A newer request always wins over an older one that finishes late.
type Handoff struct {
	build Builder

	pending atomic.Pointer[Pair]
	current *Pair // owned by the audio thread

	mu        sync.Mutex
	requested uint64
	published uint64
	dropped   uint64 // requests up to this generation are discarded
	err       error
	changed   chan struct{}
}

// NewHandoff returns a handoff using build, or NewPair when build is nil.
func NewHandoff(build Builder) *Handoff {
	if build == nil {
		build = NewPair
	}
	return &Handoff{
		build:   build,
		changed: make(chan struct{}),
	}
}

// Request starts building a pair for cfg and returns its generation.
func (h *Handoff) Request(cfg Config) uint64 {
	h.mu.Lock()
	h.requested++
	gen := h.requested
	h.mu.Unlock()

	go func() {
		pair, err := h.build(cfg)
		h.publish(gen, pair, err)
	}()

	return gen
}

func (h *Handoff) publish(gen uint64, pair *Pair, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if gen <= h.published || gen <= h.dropped {
		return
	}
	h.published = gen
	h.err = err
	if err == nil {
		h.pending.Store(pair)
	}

	close(h.changed)
	h.changed = make(chan struct{})
}

// Await blocks until the request with generation gen (or a newer one) has
// been published, and returns its build error. Never call it from the audio
// thread.
func (h *Handoff) Await(ctx context.Context, gen uint64) error {
	for {
		h.mu.Lock()
		if h.published >= gen {
			err := h.err
			h.mu.Unlock()
			return err
		}
		changed := h.changed
		h.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Latest returns the generation of the most recent request.
func (h *Handoff) Latest() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requested
}

// Acquire returns the pair to process the next block with, or nil before
// any pair was published. Audio thread only.
func (h *Handoff) Acquire() *Pair {
	if p := h.pending.Swap(nil); p != nil {
		h.current = p
	}
	return h.current
}

// Drop forgets the current and pending pairs, and any build still in
// flight, so processing goes silent until the next request lands.
// It must not run concurrently with Acquire.
func (h *Handoff) Drop() {
	h.mu.Lock()
	h.dropped = h.requested
	h.mu.Unlock()

	h.pending.Store(nil)
	h.current = nil
}
