package session

import "sync"

// viewBox holds the latest published view behind a lock and coalesces
// update notifications into a one-slot channel. The renderer pulls the
// current view whenever the channel fires; missed intermediate views are
// fine because each view is complete.
type viewBox struct {
	mu   sync.RWMutex
	view View
	ch   chan struct{}
}

func newViewBox() *viewBox {
	return &viewBox{ch: make(chan struct{}, 1)}
}

func (b *viewBox) publish(v View) {
	b.mu.Lock()
	b.view = v
	b.mu.Unlock()

	select {
	case b.ch <- struct{}{}:
	default:
	}
}

func (b *viewBox) current() View {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.view
}

func (b *viewBox) updates() <-chan struct{} { return b.ch }
