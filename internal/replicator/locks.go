package replicator

import "sync"

// mutexMap hands out one mutex per project id so that every read-modify-write
// cycle against the store runs in a per-project critical section. The store
// itself is last-writer-wins; without this, a background task finalizing one
// item could silently discard a concurrent add of another.
type mutexMap struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMutexMap() *mutexMap {
	return &mutexMap{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for id and returns its unlock function.
func (m *mutexMap) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// forget drops the entry for id so deleted projects do not pin a mutex for
// the life of the process. A goroutine still holding the stale mutex is
// harmless: its critical section re-reads the document and finds nothing.
func (m *mutexMap) forget(id string) {
	m.mu.Lock()
	delete(m.locks, id)
	m.mu.Unlock()
}
