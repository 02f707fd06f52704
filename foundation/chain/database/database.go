// Package database handles all the lower level support for maintaining the
// hash linked chain of blocks in memory and in storage. The digest
// convention that fixes how block hashes are computed is documented on the
// BlockDigest function.
package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrellabs/recordchain/foundation/chain/genesis"
)

// Serializer interface represents the behavior required to be implemented
// by any package providing support for storing and reading the chain.
type Serializer interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by
// any package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// Database manages the ordered sequence of blocks that makes up the chain.
// The chain owns the linkage between blocks and the proof of work, so the
// only way to grow the chain is through Append.
type Database struct {
	mu sync.RWMutex

	genesis genesis.Genesis
	blocks  []Block

	serializer Serializer
	evHandler  func(v string, args ...any)
}

// New constructs a new database with its genesis block derived from the
// genesis document, then reloads and validates any blocks already held by
// the serializer. A store carrying a tampered or out of sequence block
// fails construction.
func New(gen genesis.Genesis, serializer Serializer, evHandler func(v string, args ...any)) (*Database, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	// A difficulty longer than the digest can never be solved.
	if gen.Difficulty > 64 {
		return nil, fmt.Errorf("difficulty %d exceeds the digest length", gen.Difficulty)
	}

	db := Database{
		genesis:    gen,
		blocks:     []Block{GenesisBlock(gen)},
		serializer: serializer,
		evHandler:  ev,
	}

	// Read all the blocks back from storage, re-checking every block
	// against the chain rules as it is loaded.
	iter := db.serializer.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return nil, err
		}

		block := ToBlock(blockData)
		if err := block.ValidateBlock(db.blocks[len(db.blocks)-1], gen.Difficulty, ev); err != nil {
			return nil, err
		}

		db.blocks = append(db.blocks, block)
	}

	return &db, nil
}

// Close closes the underlying storage.
func (db *Database) Close() {
	db.serializer.Close()
}

// =============================================================================

// Append takes ownership of the specified block and makes it the new tip of
// the chain. The caller supplied previous block hash is replaced with the
// current tip's hash, the block is mined in place until its hash satisfies
// the difficulty rule, and the result is committed to memory and storage.
// The mining loop checks the context so a long search can be cancelled.
func (db *Database) Append(ctx context.Context, block *Block) error {

	// Check the sequence and take ownership of the linkage before the
	// expensive work starts.
	tip := db.LatestBlock()
	if block.Header.Number != tip.Header.Number+1 {
		return ErrWrongSequence
	}
	block.Header.PrevBlockHash = tip.Hash
	block.Hash = BlockDigest(block.Header, block.Payload)

	// Perform the proof of work mining operation outside the lock.
	if err := block.performPOW(ctx, db.genesis.Difficulty, db.evHandler); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	// Re-check the sequence under the lock. A block mined against a tip
	// that has since been superseded must not be committed.
	latest := db.blocks[len(db.blocks)-1]
	if block.Header.Number != latest.Header.Number+1 || block.Header.PrevBlockHash != latest.Hash {
		return ErrWrongSequence
	}

	if err := db.serializer.Write(NewBlockData(*block)); err != nil {
		return err
	}
	db.blocks = append(db.blocks, *block)

	return nil
}

// =============================================================================

// Validate walks the chain from the block after genesis to the tip,
// recomputing each block's digest against its stored hash and checking its
// linkage to the previous block. The first failure is returned as a
// BlockError identifying the block and the failed check.
func (db *Database) Validate() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return ValidateBlocks(db.blocks)
}

// IsValid reports whether the whole chain passes validation. This is the
// minimal boolean form of Validate.
func (db *Database) IsValid() bool {
	return db.Validate() == nil
}

// ValidateBlocks applies the chain validation rules to any ordered block
// sequence whose first element is the trusted genesis block. The genesis
// block itself is never checked since it has no parent and is never mined.
func ValidateBlocks(blocks []Block) error {
	for i := 1; i < len(blocks); i++ {
		block := blocks[i]

		if BlockDigest(block.Header, block.Payload) != block.Hash {
			return &BlockError{Number: block.Header.Number, Err: ErrHashMismatch}
		}

		if block.Header.PrevBlockHash != blocks[i-1].Hash {
			return &BlockError{Number: block.Header.Number, Err: ErrLinkageBroken}
		}
	}

	return nil
}

// =============================================================================

// LatestBlock returns the current tip of the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1]
}

// Height returns the number of the current tip. The genesis block gives a
// new chain height 0.
func (db *Database) Height() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1].Header.Number
}

// GetBlock returns the block with the specified number.
func (db *Database) GetBlock(num uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if num >= uint64(len(db.blocks)) {
		return Block{}, fmt.Errorf("block %d does not exist", num)
	}

	return db.blocks[num], nil
}

// CopyBlocks makes a copy of the whole chain, genesis block first.
func (db *Database) CopyBlocks() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)

	return blocks
}
