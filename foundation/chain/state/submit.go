package state

import (
	"github.com/kestrellabs/recordchain/foundation/chain/record"
)

// SubmitRecord queues a record for inclusion in the next block and signals
// the worker that there is mining to do.
func (s *State) SubmitRecord(rec record.Record) error {
	s.evHandler("state: SubmitRecord: queue record: %s", rec.Canonical())

	n := s.intake.Add(rec)
	s.evHandler("state: SubmitRecord: records pending[%d]", n)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}
