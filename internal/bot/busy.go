package bot

import "sync"

// BusyGate tracks which users have a generation in flight.
// TryAcquire is an atomic test-and-set, so overlapping requests from one user cannot both pass.
type BusyGate struct {
	mu   sync.Mutex
	busy map[string]struct{}
}

// NewBusyGate creates an empty gate
func NewBusyGate() *BusyGate {
	return &BusyGate{busy: make(map[string]struct{})}
}

// TryAcquire marks the user busy and reports whether they were free
func (g *BusyGate) TryAcquire(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.busy[userID]; ok {
		return false
	}
	g.busy[userID] = struct{}{}
	return true
}

// Release clears the user's flag
func (g *BusyGate) Release(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.busy, userID)
}

// Busy reports whether the user has a generation in flight
func (g *BusyGate) Busy(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.busy[userID]
	return ok
}
