package catalog

import (
	"encoding/binary"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// ExistenceFilter is a bloom-filter prefilter over known catalog item IDs.
// It lets the API layer short-circuit requests for items that were never
// added. False positives fall through to the store, which remains the source
// of truth; IDs created after seeding must be recorded with Add.
type ExistenceFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

// NewExistenceFilter creates a filter sized for the expected number of items
// at the given false-positive rate.
func NewExistenceFilter(expectedItems uint, fpRate float64) *ExistenceFilter {
	return &ExistenceFilter{
		filter: bloom.NewWithEstimates(expectedItems, fpRate),
	}
}

// Seed adds all given item IDs to the filter.
func (f *ExistenceFilter) Seed(ids []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.filter.Add(idKey(id))
	}
}

// Add records a newly created item ID.
func (f *ExistenceFilter) Add(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.Add(idKey(id))
}

// MayExist reports whether the item might exist. A false result means the ID
// was never added to the filter; a true result must be confirmed against the
// store.
func (f *ExistenceFilter) MayExist(id int64) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.Test(idKey(id))
}

func idKey(id int64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id))
	return buf[:]
}
