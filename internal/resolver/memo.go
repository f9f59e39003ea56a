package resolver

import "sync"

// Stats counts engine activity since construction.
type Stats struct {
	PositiveHits uint64
	NegativeHits uint64
	Resolved     uint64
	NotFound     uint64
}

// memo holds the process-wide positive and negative result caches. Entries
// are never evicted for the engine's lifetime and are never persisted; only
// the on-disk artifact store survives a restart. A key is never present in
// both maps at once.
type memo struct {
	mu     sync.RWMutex
	found  map[interface{}]string
	absent map[interface{}]struct{}
	stats  Stats
}

func newMemo() *memo {
	return &memo{
		found:  make(map[interface{}]string),
		absent: make(map[interface{}]struct{}),
	}
}

// lookupFound returns the memoized path for key, counting the hit.
func (m *memo) lookupFound(key interface{}) (string, bool) {
	m.mu.RLock()
	path, ok := m.found[key]
	m.mu.RUnlock()
	if ok {
		m.mu.Lock()
		m.stats.PositiveHits++
		m.mu.Unlock()
	}
	return path, ok
}

// lookupAbsent reports whether key is a memoized miss, counting the hit.
func (m *memo) lookupAbsent(key interface{}) bool {
	m.mu.RLock()
	_, ok := m.absent[key]
	m.mu.RUnlock()
	if ok {
		m.mu.Lock()
		m.stats.NegativeHits++
		m.mu.Unlock()
	}
	return ok
}

// addFound records a successful resolution. Clears any stale absent marker
// so a key is never in both maps.
func (m *memo) addFound(key interface{}, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.found[key] = path
	delete(m.absent, key)
	m.stats.Resolved++
}

// addAbsent records a confirmed miss, unless a concurrent caller resolved
// the key in the meantime.
func (m *memo) addAbsent(key interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.found[key]; ok {
		return
	}
	m.absent[key] = struct{}{}
	m.stats.NotFound++
}

func (m *memo) snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}
