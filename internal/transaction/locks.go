package transaction

import "sync"

// vehicleLocks serializes transactions per vehicle: two scans for the same
// vehicle queue up rather than racing, while different vehicles proceed in
// parallel. Lock entries are reference-counted and removed when idle so the
// map does not grow with the fleet's lifetime.
type vehicleLocks struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newVehicleLocks() *vehicleLocks {
	return &vehicleLocks{locks: make(map[string]*lockEntry)}
}

// acquire blocks until the caller holds the lock for the given vehicle ID.
func (l *vehicleLocks) acquire(id string) {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &lockEntry{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
}

func (l *vehicleLocks) release(id string) {
	l.mu.Lock()
	entry := l.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()

	entry.mu.Unlock()
}
