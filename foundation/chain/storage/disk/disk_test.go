package disk_test

import (
	"testing"

	"github.com/kestrellabs/recordchain/foundation/chain/database"
	"github.com/kestrellabs/recordchain/foundation/chain/storage/disk"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_DiskRoundTrip(t *testing.T) {
	t.Log("Given the need to store and reload blocks on disk.")
	{
		t.Logf("\tTest 0:\tWhen writing blocks to a fresh directory.")
		{
			strg, err := disk.New(t.TempDir())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct disk storage: %v", failed, err)
			}

			blockData := []database.BlockData{
				{Hash: "00aa", Header: database.BlockHeader{Number: 1, PrevBlockHash: database.ZeroHash, TimeStamp: 100, Nonce: 9}, Payload: `{"Visit":"1"}`},
				{Hash: "00bb", Header: database.BlockHeader{Number: 2, PrevBlockHash: "00aa", TimeStamp: 200, Nonce: 3}, Payload: `{"Visit":"2"}`},
			}

			for _, bd := range blockData {
				if err := strg.Write(bd); err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to write block %d: %v", failed, bd.Header.Number, err)
				}
			}
			t.Logf("\t%s\tTest 0:\tShould be able to write the blocks.", success)

			got, err := strg.GetBlock(2)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to read block 2: %v", failed, err)
			}
			if got != blockData[1] {
				t.Fatalf("\t%s\tTest 0:\tShould read back the exact block: got %+v.", failed, got)
			}
			t.Logf("\t%s\tTest 0:\tShould read back the exact block.", success)

			var count int
			iter := strg.ForEach()
			for bd, err := iter.Next(); !iter.Done(); bd, err = iter.Next() {
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to iterate: %v", failed, err)
				}
				if bd != blockData[count] {
					t.Fatalf("\t%s\tTest 0:\tShould iterate in chain order.", failed)
				}
				count++
			}
			if count != len(blockData) {
				t.Fatalf("\t%s\tTest 0:\tShould iterate every block: got %d, exp %d.", failed, count, len(blockData))
			}
			t.Logf("\t%s\tTest 0:\tShould iterate every block in chain order.", success)

			if err := strg.Reset(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to reset the storage: %v", failed, err)
			}
			if _, err := strg.GetBlock(1); err == nil {
				t.Fatalf("\t%s\tTest 0:\tShould have no blocks after reset.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould have no blocks after reset.", success)
		}
	}
}
