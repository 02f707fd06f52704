// Package intake maintains the queue of records waiting to be sealed into
// blocks. Records carry no fees or priorities, so they are drained in
// arrival order, one record per block.
package intake

import (
	"errors"
	"sync"

	"github.com/kestrellabs/recordchain/foundation/chain/record"
)

// ErrEmpty is returned when a record is requested and none are pending.
var ErrEmpty = errors.New("no records in the intake queue")

// Intake represents a FIFO cache of records waiting to be mined into the
// chain.
type Intake struct {
	mu      sync.RWMutex
	records []record.Record
}

// New constructs a new intake queue for pending records.
func New() *Intake {
	return &Intake{}
}

// Count returns the current number of records in the queue.
func (it *Intake) Count() int {
	it.mu.RLock()
	defer it.mu.RUnlock()

	return len(it.records)
}

// Add appends a record to the back of the queue.
func (it *Intake) Add(rec record.Record) int {
	it.mu.Lock()
	defer it.mu.Unlock()

	it.records = append(it.records, rec)

	return len(it.records)
}

// Pick returns the record at the front of the queue without removing it.
// The record is removed with Delete once it has been committed to the
// chain, so a cancelled mining run leaves the queue untouched.
func (it *Intake) Pick() (record.Record, error) {
	it.mu.RLock()
	defer it.mu.RUnlock()

	if len(it.records) == 0 {
		return nil, ErrEmpty
	}

	return it.records[0], nil
}

// Delete removes the first record whose canonical form matches the
// specified record.
func (it *Intake) Delete(rec record.Record) {
	it.mu.Lock()
	defer it.mu.Unlock()

	canonical := rec.Canonical()
	for i, r := range it.records {
		if r.Canonical() == canonical {
			it.records = append(it.records[:i], it.records[i+1:]...)
			return
		}
	}
}

// Copy returns a copy of the queue in arrival order.
func (it *Intake) Copy() []record.Record {
	it.mu.RLock()
	defer it.mu.RUnlock()

	records := make([]record.Record, len(it.records))
	copy(records, it.records)

	return records
}

// Truncate clears all the records from the queue.
func (it *Intake) Truncate() {
	it.mu.Lock()
	defer it.mu.Unlock()

	it.records = nil
}
