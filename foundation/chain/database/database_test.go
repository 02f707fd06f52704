package database_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kestrellabs/recordchain/foundation/chain/database"
	"github.com/kestrellabs/recordchain/foundation/chain/genesis"
	"github.com/kestrellabs/recordchain/foundation/chain/record"
	"github.com/kestrellabs/recordchain/foundation/chain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var testGenesis = genesis.Genesis{
	Date:       time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
	Name:       "test ledger",
	Marker:     "Genesis Block",
	Difficulty: 2,
}

// =============================================================================

func Test_BlockDigest(t *testing.T) {
	t.Log("Given the need to verify the digest convention.")
	{
		t.Logf("\tTest 0:\tWhen hashing a fixed set of block fields.")
		{
			header := database.BlockHeader{
				Number:        42,
				PrevBlockHash: database.ZeroHash,
				TimeStamp:     1735689600,
				Nonce:         7,
			}
			payload := `{"Patient_ID":"P001","Diagnosis":"Flu"}`

			got := database.BlockDigest(header, payload)

			if got != database.BlockDigest(header, payload) {
				t.Fatalf("\t%s\tTest 0:\tShould produce the same digest on every call.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce the same digest on every call.", success)

			// The documented convention: decimal fields and payload
			// concatenated in header-field order, SHA-256, lowercase hex.
			data := strconv.FormatUint(header.Number, 10) +
				header.PrevBlockHash +
				strconv.FormatUint(header.TimeStamp, 10) +
				payload +
				strconv.FormatUint(header.Nonce, 10)
			sum := sha256.Sum256([]byte(data))
			exp := hex.EncodeToString(sum[:])

			if got != exp {
				t.Fatalf("\t%s\tTest 0:\tShould follow the digest convention: got %s, exp %s", failed, got, exp)
			}
			t.Logf("\t%s\tTest 0:\tShould follow the digest convention.", success)

			if len(got) != 64 || got != strings.ToLower(got) {
				t.Fatalf("\t%s\tTest 0:\tShould produce 64 lowercase hex characters.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould produce 64 lowercase hex characters.", success)
		}
	}
}

func Test_GenesisBlock(t *testing.T) {
	t.Log("Given the need to derive a stable genesis block from the genesis document.")
	{
		t.Logf("\tTest 0:\tWhen constructing two chains from the same document.")
		{
			db1 := newDatabase(t, testGenesis)
			db2 := newDatabase(t, testGenesis)

			gen1 := db1.LatestBlock()
			gen2 := db2.LatestBlock()

			if gen1.Header.Number != 0 || gen1.Header.PrevBlockHash != database.ZeroHash {
				t.Fatalf("\t%s\tTest 0:\tShould have number 0 and the zero hash sentinel.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have number 0 and the zero hash sentinel.", success)

			if gen1.Payload != testGenesis.Marker {
				t.Fatalf("\t%s\tTest 0:\tShould carry the marker payload: got %q.", failed, gen1.Payload)
			}
			t.Logf("\t%s\tTest 0:\tShould carry the marker payload.", success)

			if gen1.Hash != gen2.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould derive the same genesis hash from the same document.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould derive the same genesis hash from the same document.", success)
		}
	}
}

func Test_AppendAndValidate(t *testing.T) {
	t.Log("Given the need to append mined blocks and detect tampering.")
	{
		t.Logf("\tTest 0:\tWhen appending a record at difficulty %d.", testGenesis.Difficulty)
		{
			db := newDatabase(t, testGenesis)
			genesisBlock := db.LatestBlock()

			rec, err := record.New(
				record.Field{Name: "Patient_ID", Value: "P001"},
				record.Field{Name: "Diagnosis", Value: "Flu"},
			)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the record: %v", failed, err)
			}

			block := database.NewBlock(1, genesisBlock.Hash, time.Now(), rec.Canonical())
			if err := db.Append(context.Background(), &block); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to append the block: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to append the block.", success)

			if !strings.HasPrefix(block.Hash, "00") {
				t.Fatalf("\t%s\tTest 0:\tShould have a hash with %d leading zeros: got %s.", failed, testGenesis.Difficulty, block.Hash)
			}
			t.Logf("\t%s\tTest 0:\tShould have a hash with %d leading zeros.", success, testGenesis.Difficulty)

			if block.Header.PrevBlockHash != genesisBlock.Hash {
				t.Fatalf("\t%s\tTest 0:\tShould be linked to the genesis block hash.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould be linked to the genesis block hash.", success)

			if !db.IsValid() {
				t.Fatalf("\t%s\tTest 0:\tShould report a freshly built chain as valid.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report a freshly built chain as valid.", success)
		}

		t.Logf("\tTest 1:\tWhen a payload is mutated without re-mining.")
		{
			db := buildChain(t, 2)

			blocks := db.CopyBlocks()
			blocks[1].Payload = strings.Replace(blocks[1].Payload, "Flu", "Cold", 1)

			err := database.ValidateBlocks(blocks)
			if err == nil {
				t.Fatalf("\t%s\tTest 1:\tShould detect the tampered payload.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould detect the tampered payload.", success)

			var blockErr *database.BlockError
			if !errors.As(err, &blockErr) || blockErr.Number != 1 || !errors.Is(err, database.ErrHashMismatch) {
				t.Fatalf("\t%s\tTest 1:\tShould report a hash mismatch at block 1: got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould report a hash mismatch at block 1.", success)
		}

		t.Logf("\tTest 2:\tWhen a block's parent link is replaced.")
		{
			db := buildChain(t, 2)

			// Point block 2 at a fabricated parent and recompute its digest
			// so only the linkage check can catch the break.
			blocks := db.CopyBlocks()
			blocks[2].Header.PrevBlockHash = database.ZeroHash
			blocks[2].Hash = database.BlockDigest(blocks[2].Header, blocks[2].Payload)

			err := database.ValidateBlocks(blocks)
			if err == nil {
				t.Fatalf("\t%s\tTest 2:\tShould detect the broken linkage.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould detect the broken linkage.", success)

			var blockErr *database.BlockError
			if !errors.As(err, &blockErr) || blockErr.Number != 2 || !errors.Is(err, database.ErrLinkageBroken) {
				t.Fatalf("\t%s\tTest 2:\tShould report broken linkage at block 2: got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould report broken linkage at block 2.", success)
		}

		t.Logf("\tTest 3:\tWhen a block skips ahead in the sequence.")
		{
			db := newDatabase(t, testGenesis)

			block := database.NewBlock(5, database.ZeroHash, time.Now(), `{"Patient_ID":"P009"}`)
			err := db.Append(context.Background(), &block)
			if !errors.Is(err, database.ErrWrongSequence) {
				t.Fatalf("\t%s\tTest 3:\tShould reject the out of sequence block: got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 3:\tShould reject the out of sequence block.", success)
		}
	}
}

func Test_MiningPostcondition(t *testing.T) {
	t.Log("Given the need to satisfy the difficulty rule across difficulties.")
	{
		for difficulty := uint16(0); difficulty <= 3; difficulty++ {
			t.Logf("\tTest %d:\tWhen mining with difficulty %d.", difficulty, difficulty)
			{
				gen := testGenesis
				gen.Difficulty = difficulty

				db := newDatabase(t, gen)

				block := database.NewBlock(1, db.LatestBlock().Hash, time.Now(), `{"Patient_ID":"P001"}`)
				if err := db.Append(context.Background(), &block); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to append the block: %v", failed, difficulty, err)
				}
				t.Logf("\t%s\tTest %d:\tShould be able to append the block.", success, difficulty)

				if block.Hash[:difficulty] != database.ZeroHash[:difficulty] {
					t.Fatalf("\t%s\tTest %d:\tShould have %d leading zeros: got %s.", failed, difficulty, difficulty, block.Hash)
				}
				t.Logf("\t%s\tTest %d:\tShould have %d leading zeros.", success, difficulty, difficulty)
			}
		}
	}
}

func Test_MiningCancel(t *testing.T) {
	t.Log("Given the need to cancel an impractical mining run.")
	{
		t.Logf("\tTest 0:\tWhen the context deadline expires mid search.")
		{
			gen := testGenesis
			gen.Difficulty = 32

			db := newDatabase(t, gen)

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			block := database.NewBlock(1, db.LatestBlock().Hash, time.Now(), `{"Patient_ID":"P001"}`)
			err := db.Append(ctx, &block)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Fatalf("\t%s\tTest 0:\tShould stop the search with the context error: got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould stop the search with the context error.", success)

			if db.Height() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould leave the chain untouched.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould leave the chain untouched.", success)
		}
	}
}

func Test_Reload(t *testing.T) {
	t.Log("Given the need to reload a persisted chain with identical hashes.")
	{
		t.Logf("\tTest 0:\tWhen reopening a database over existing storage.")
		{
			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct storage: %v", failed, err)
			}

			db, err := database.New(testGenesis, strg, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct the database: %v", failed, err)
			}

			for i := uint64(1); i <= 3; i++ {
				block := database.NewBlock(i, db.LatestBlock().Hash, time.Now(), `{"Visit":"`+strconv.FormatUint(i, 10)+`"}`)
				if err := db.Append(context.Background(), &block); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to append block %d: %v", failed, i, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould be able to append 3 blocks.", success)

			db2, err := database.New(testGenesis, strg, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reload the chain: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to reload the chain.", success)

			want := db.CopyBlocks()
			got := db2.CopyBlocks()
			if len(got) != len(want) {
				t.Fatalf("\t%s\tTest 0:\tShould reload every block: got %d, exp %d.", failed, len(got), len(want))
			}
			for i := range want {
				if got[i].Hash != want[i].Hash {
					t.Fatalf("\t%s\tTest 0:\tShould reload block %d with an identical hash.", failed, i)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould reload every block with identical hashes.", success)

			if !db2.IsValid() {
				t.Fatalf("\t%s\tTest 0:\tShould report the reloaded chain as valid.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould report the reloaded chain as valid.", success)
		}

		t.Logf("\tTest 1:\tWhen the storage carries a tampered block.")
		{
			db := buildChain(t, 1)
			blockData := database.NewBlockData(db.CopyBlocks()[1])
			blockData.Payload = strings.Replace(blockData.Payload, "Flu", "Cold", 1)

			strg, err := memory.New()
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct storage: %v", failed, err)
			}
			if err := strg.Write(blockData); err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to write the tampered block: %v", failed, err)
			}

			if _, err := database.New(testGenesis, strg, nil); !errors.Is(err, database.ErrHashMismatch) {
				t.Fatalf("\t%s\tTest 1:\tShould refuse to load the tampered chain: got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould refuse to load the tampered chain.", success)
		}
	}
}

// =============================================================================

// newDatabase constructs a database over fresh memory storage.
func newDatabase(t *testing.T, gen genesis.Genesis) *database.Database {
	t.Helper()

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
	}

	db, err := database.New(gen, strg, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the database: %v", failed, err)
	}

	return db
}

// buildChain constructs a database and appends the specified number of
// patient record blocks.
func buildChain(t *testing.T, blocks uint64) *database.Database {
	t.Helper()

	db := newDatabase(t, testGenesis)

	for i := uint64(1); i <= blocks; i++ {
		block := database.NewBlock(i, db.LatestBlock().Hash, time.Now(), `{"Patient_ID":"P00`+strconv.FormatUint(i, 10)+`","Diagnosis":"Flu"}`)
		if err := db.Append(context.Background(), &block); err != nil {
			t.Fatalf("\t%s\tShould be able to append block %d: %v", failed, i, err)
		}
	}

	return db
}
