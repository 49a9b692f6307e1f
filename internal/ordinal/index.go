// Package ordinal maintains the globally ordered book-id sequence behind
// offset pagination. The sequence is a disposable projection: it is rebuilt
// from the primary store at startup and appended to on every create.
package ordinal

import (
	"sync"
	"sync/atomic"
)

// Index assigns each id a monotonically increasing ordinal and serves
// range reads by offset. Ordinals are stable under concurrent appends but
// are positions, not identities; gaps after removals are fine.
type Index struct {
	mu   sync.RWMutex
	ids  []int64
	next atomic.Int64
}

func New() *Index {
	return &Index{}
}

// Rebuild replaces the whole sequence and seeds the next-ordinal counter.
// Called once at startup with every id in canonical store order.
func (x *Index) Rebuild(ids []int64) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ids = append(x.ids[:0], ids...)
	x.next.Store(int64(len(x.ids)))
}

// Append places id at the end of the sequence and returns its ordinal.
func (x *Index) Append(id int64) int64 {
	ord := x.next.Add(1) - 1
	x.mu.Lock()
	x.ids = append(x.ids, id)
	x.mu.Unlock()
	return ord
}

// RangeByOffset returns up to limit ids starting at offset. Ranges past
// the end return whatever exists, never an error.
func (x *Index) RangeByOffset(offset, limit int) []int64 {
	if offset < 0 || limit <= 0 {
		return nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	if offset >= len(x.ids) {
		return nil
	}
	end := offset + limit
	if end > len(x.ids) {
		end = len(x.ids)
	}
	return append([]int64(nil), x.ids[offset:end]...)
}

// Size reports the number of ids currently indexed.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Remove drops id from the sequence, reporting whether it was present.
// Later ids shift down one position; the ordinal counter is untouched so
// future appends stay monotonic.
func (x *Index) Remove(id int64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, existing := range x.ids {
		if existing == id {
			x.ids = append(x.ids[:i], x.ids[i+1:]...)
			return true
		}
	}
	return false
}
