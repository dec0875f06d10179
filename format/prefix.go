package format

import (
	"sync"

	"github.com/mattn/go-runewidth"
)

// PrefixTracker keeps the widest logger name seen so far. The maximum only
// grows.
type PrefixTracker struct {
	mu  sync.RWMutex
	max int
}

// Observe records name and returns the updated maximum.
func (p *PrefixTracker) Observe(name string) int {
	w := runewidth.StringWidth(name)
	p.mu.Lock()
	defer p.mu.Unlock()
	if w > p.max {
		p.max = w
	}
	return p.max
}

// Max returns the widest name width observed.
func (p *PrefixTracker) Max() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.max
}

// Reset forgets every observation.
func (p *PrefixTracker) Reset() {
	p.mu.Lock()
	p.max = 0
	p.mu.Unlock()
}
