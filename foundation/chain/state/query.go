package state

import (
	"github.com/kestrellabs/recordchain/foundation/chain/database"
	"github.com/kestrellabs/recordchain/foundation/chain/record"
)

// QueryLatest represents to query the latest block in the chain.
const QueryLatest = ^uint64(0) >> 1

// =============================================================================

// QueryIntakeLength returns the current length of the intake queue.
func (s *State) QueryIntakeLength() int {
	return s.intake.Count()
}

// QueryBlocksByNumber returns the set of blocks based on block numbers.
// Both bounds are inclusive and QueryLatest selects the current tip.
func (s *State) QueryBlocksByNumber(from uint64, to uint64) []database.Block {
	if from == QueryLatest {
		from = s.db.Height()
		to = from
	}
	if to == QueryLatest {
		to = s.db.Height()
	}

	var out []database.Block
	for i := from; i <= to; i++ {
		block, err := s.db.GetBlock(i)
		if err != nil {
			s.evHandler("state: QueryBlocksByNumber: ERROR: %s", err)
			return nil
		}
		out = append(out, block)
	}

	return out
}

// QueryBlocksByField returns the set of blocks whose payload carries the
// specified field name and value. Blocks whose payload is not a record,
// such as the genesis block, never match.
func (s *State) QueryBlocksByField(name string, value string) []database.Block {
	var out []database.Block

	for _, block := range s.db.CopyBlocks() {
		rec, err := record.Parse(block.Payload)
		if err != nil {
			continue
		}

		if v, exists := rec.Lookup(name); exists && v == value {
			out = append(out, block)
		}
	}

	return out
}
