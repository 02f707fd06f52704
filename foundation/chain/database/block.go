package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/kestrellabs/recordchain/foundation/chain/genesis"
)

// ZeroHash represents a hash code of zeros. It is the previous block hash
// for the genesis block and the source of the prefix compare used by the
// proof of work difficulty rule.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// =============================================================================

// BlockHeader represents common information required for each block.
type BlockHeader struct {
	Number        uint64 `json:"number"`          // Block number in the chain, 0 is the genesis block.
	PrevBlockHash string `json:"prev_block_hash"` // Hash of the previous block in the chain.
	TimeStamp     uint64 `json:"timestamp"`       // Time the block was created.
	Nonce         uint64 `json:"nonce"`           // Value identified to solve the hash solution.
}

// Block represents a single payload sealed into the chain. The Hash field
// caches the digest of the other fields and is only written by the digest
// and mining code so the nonce can never change without a matching
// recompute.
type Block struct {
	Header  BlockHeader
	Payload string
	Hash    string
}

// NewBlock constructs a block for the specified payload with its hash
// computed from its initial field values. Linkage and mining are performed
// by the database when the block is appended.
func NewBlock(number uint64, prevBlockHash string, timeStamp time.Time, payload string) Block {
	header := BlockHeader{
		Number:        number,
		PrevBlockHash: prevBlockHash,
		TimeStamp:     uint64(timeStamp.UTC().Unix()),
		Nonce:         0,
	}

	return Block{
		Header:  header,
		Payload: payload,
		Hash:    BlockDigest(header, payload),
	}
}

// GenesisBlock derives the first block of the chain from the genesis
// document. The genesis block is never mined, so its hash is not required
// to satisfy the difficulty rule.
func GenesisBlock(gen genesis.Genesis) Block {
	return NewBlock(0, ZeroHash, gen.Date, gen.Marker)
}

// =============================================================================

// BlockDigest computes the hash for a block from its header fields and
// payload. The digest convention is the interoperability contract for any
// persisted chain data: the base 10 forms of Number, TimeStamp and Nonce are
// concatenated with PrevBlockHash and Payload in header-field order with no
// separators, then hashed with SHA-256 and encoded as 64 lowercase hex
// characters with no prefix. Any change to this ordering or formatting
// changes every block hash.
func BlockDigest(header BlockHeader, payload string) string {
	data := strconv.FormatUint(header.Number, 10) +
		header.PrevBlockHash +
		strconv.FormatUint(header.TimeStamp, 10) +
		payload +
		strconv.FormatUint(header.Nonce, 10)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// performPOW does the work of mining to find a valid hash for a specified
// block. Pointer semantics are being used since a nonce is being discovered.
func (b *Block) performPOW(ctx context.Context, difficulty uint16, ev func(v string, args ...any)) error {
	ev("database: performPOW: MINING: started: blk[%d]", b.Header.Number)
	defer ev("database: performPOW: MINING: completed: blk[%d]", b.Header.Number)

	// The search starts from whatever nonce the block carries, which is 0
	// for a freshly constructed block, and increments by 1 until the hash
	// carries the required number of leading zeros.
	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: performPOW: MINING: attempts[%d]", attempts)
		}

		// Did we get cancelled trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: performPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		// Hash the block and check if we have solved the puzzle.
		b.Hash = BlockDigest(b.Header, b.Payload)
		if !isHashSolved(difficulty, b.Hash) {
			b.Header.Nonce++
			continue
		}

		ev("database: performPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]", b.Header.PrevBlockHash, b.Hash)
		ev("database: performPOW: MINING: attempts[%d]", attempts)

		return nil
	}
}

// ValidateBlock takes a block and validates it to be included into the
// chain after the specified previous block. This is the full check applied
// to blocks read back from storage.
func (b Block) ValidateBlock(previousBlock Block, difficulty uint16, evHandler func(v string, args ...any)) error {
	evHandler("database: ValidateBlock: validate: blk[%d]: check: block number is the next number", b.Header.Number)

	nextNumber := previousBlock.Header.Number + 1
	if b.Header.Number != nextNumber {
		return &BlockError{Number: b.Header.Number, Err: ErrWrongSequence}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: stored hash matches block contents", b.Header.Number)

	if BlockDigest(b.Header, b.Payload) != b.Hash {
		return &BlockError{Number: b.Header.Number, Err: ErrHashMismatch}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: block hash has been solved", b.Header.Number)

	if !isHashSolved(difficulty, b.Hash) {
		return &BlockError{Number: b.Header.Number, Err: ErrHashNotSolved}
	}

	evHandler("database: ValidateBlock: validate: blk[%d]: check: parent hash does match parent block", b.Header.Number)

	if b.Header.PrevBlockHash != previousBlock.Hash {
		return &BlockError{Number: b.Header.Number, Err: ErrLinkageBroken}
	}

	return nil
}

// isHashSolved checks the hash to make sure it complies with
// the POW rules. We need to match a difficulty number of 0's.
func isHashSolved(difficulty uint16, hash string) bool {
	if len(hash) != 64 {
		return false
	}

	return hash[:difficulty] == ZeroHash[:difficulty]
}

// =============================================================================

// BlockData represents what is serialized to storage. The stored hash and
// the payload string travel verbatim so a reloaded chain re-derives bit
// identical digests.
type BlockData struct {
	Hash    string      `json:"hash"`
	Header  BlockHeader `json:"block"`
	Payload string      `json:"payload"`
}

// NewBlockData constructs the value to serialize to storage.
func NewBlockData(block Block) BlockData {
	blockData := BlockData{
		Hash:    block.Hash,
		Header:  block.Header,
		Payload: block.Payload,
	}

	return blockData
}

// ToBlock converts a BlockData into a Block.
func ToBlock(blockData BlockData) Block {
	block := Block{
		Header:  blockData.Header,
		Payload: blockData.Payload,
		Hash:    blockData.Hash,
	}

	return block
}
