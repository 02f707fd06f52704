package state

import (
	"github.com/kestrellabs/recordchain/foundation/chain/database"
	"github.com/kestrellabs/recordchain/foundation/chain/genesis"
	"github.com/kestrellabs/recordchain/foundation/chain/record"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy of the current tip of the chain.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveIntake returns a copy of the records waiting to be mined,
// in arrival order.
func (s *State) RetrieveIntake() []record.Record {
	return s.intake.Copy()
}
