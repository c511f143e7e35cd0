package digest

import "github.com/blendin/extractor/pkg/domain"

// Deduplicator inserts records into a LocalizationMap under their digest.
// It is not safe for concurrent use; the map itself is.
type Deduplicator struct {
	hasher     *Hasher
	entries    *domain.LocalizationMap
	duplicates int
}

// NewDeduplicator creates a Deduplicator writing into a fresh map.
func NewDeduplicator(h *Hasher) *Deduplicator {
	return &Deduplicator{hasher: h, entries: domain.NewLocalizationMap()}
}

// Add hashes record and inserts it. The first record under a hash wins;
// added is false for a duplicate.
func (d *Deduplicator) Add(record domain.TextRecord) (hash string, added bool) {
	hash = d.hasher.Sum(record)
	if !d.entries.Insert(hash, record) {
		d.duplicates++
		return hash, false
	}
	return hash, true
}

// Map returns the accumulated map.
func (d *Deduplicator) Map() *domain.LocalizationMap {
	return d.entries
}

// Duplicates returns how many Add calls hit an existing hash.
func (d *Deduplicator) Duplicates() int {
	return d.duplicates
}
