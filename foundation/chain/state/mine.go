package state

import (
	"context"
	"errors"
	"time"

	"github.com/kestrellabs/recordchain/foundation/chain/database"
)

// ErrNoRecords is returned when a block is requested to be created
// and there are no records waiting in the intake queue.
var ErrNoRecords = errors.New("no records in the intake queue")

// =============================================================================

// MineNextBlock seals the record at the front of the intake queue into a
// new block with a proper hash that becomes the next block in the chain.
func (s *State) MineNextBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNextBlock: MINING: check intake count")

	// Is there a record waiting to be sealed.
	rec, err := s.intake.Pick()
	if err != nil {
		return database.Block{}, ErrNoRecords
	}

	s.evHandler("state: MineNextBlock: MINING: perform POW")

	// Construct the candidate block. The previous block hash carried here
	// is provisional, the database replaces it with the tip's hash when
	// the block is appended.
	tip := s.db.LatestBlock()
	block := database.NewBlock(tip.Header.Number+1, tip.Hash, time.Now(), rec.Canonical())

	// Attempt to extend the chain by solving the POW puzzle. This can be
	// cancelled. A cancel that lands after the solve does not matter: once
	// Append returns nil the block is committed, so the record must come
	// off the queue or the next run would seal it a second time.
	if err := s.db.Append(ctx, &block); err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNextBlock: MINING: remove record from intake")

	// The record is in the chain now, drop it from the queue.
	s.intake.Delete(rec)

	return block, nil
}
