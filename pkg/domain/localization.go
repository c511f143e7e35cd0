package domain

import "sync"

// LocalizationMap is the deduplicated mapping from content hash to TextRecord.
// Keys keep insertion order. It is safe for concurrent use.
type LocalizationMap struct {
	mu      sync.RWMutex
	keys    []string
	entries map[string]TextRecord
}

// NewLocalizationMap creates an empty map.
func NewLocalizationMap() *LocalizationMap {
	return &LocalizationMap{
		entries: make(map[string]TextRecord),
	}
}

// Insert adds record under hash. It returns false and leaves the map
// unchanged when hash is already present.
func (m *LocalizationMap) Insert(hash string, record TextRecord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[hash]; exists {
		return false
	}
	m.entries[hash] = record
	m.keys = append(m.keys, hash)
	return true
}

// Get returns the record stored under hash.
func (m *LocalizationMap) Get(hash string) (TextRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.entries[hash]
	return r, ok
}

// Len returns the number of entries.
func (m *LocalizationMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Keys returns the hashes in insertion order.
func (m *LocalizationMap) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *LocalizationMap) Range(fn func(hash string, record TextRecord) bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range m.keys {
		if !fn(k, m.entries[k]) {
			return
		}
	}
}

// MarshalJSON implements json.Marshaler, emitting entries in insertion order.
func (m *LocalizationMap) MarshalJSON() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buf := make([]byte, 0, 64*len(m.keys)+2)
	buf = append(buf, '{')
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = AppendJSString(buf, k)
		buf = append(buf, ':')
		buf = m.entries[k].AppendJSON(buf)
	}
	return append(buf, '}'), nil
}
