// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"github.com/kestrellabs/recordchain/foundation/chain/database"
	"github.com/kestrellabs/recordchain/foundation/chain/genesis"
	"github.com/kestrellabs/recordchain/foundation/chain/intake"
)

// EventHandler defines a function that is called when events
// occur in the processing of mining and persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by
// any package providing support for mining.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the ledger node.
type Config struct {
	Genesis   genesis.Genesis
	Storage   database.Serializer
	EvHandler EventHandler
}

// State manages the ledger and its chain database.
type State struct {
	evHandler EventHandler

	genesis genesis.Genesis
	intake  *intake.Intake
	db      *database.Database

	Worker Worker
}

// New constructs a new ledger state for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Access the storage for the chain. Any blocks already in storage are
	// reloaded and re-validated here.
	db, err := database.New(cfg.Genesis, cfg.Storage, ev)
	if err != nil {
		return nil, err
	}

	// Create the State to provide support for managing the ledger.
	state := State{
		evHandler: ev,

		genesis: cfg.Genesis,
		intake:  intake.New(),
		db:      db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the database storage is properly closed.
	defer func() {
		s.db.Close()
	}()

	// Stop all chain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}
