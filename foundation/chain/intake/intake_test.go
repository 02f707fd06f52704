package intake_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/kestrellabs/recordchain/foundation/chain/intake"
	"github.com/kestrellabs/recordchain/foundation/chain/record"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_FIFO(t *testing.T) {
	t.Log("Given the need to drain records in arrival order.")
	{
		t.Logf("\tTest 0:\tWhen adding and draining a set of records.")
		{
			it := intake.New()

			if _, err := it.Pick(); !errors.Is(err, intake.ErrEmpty) {
				t.Fatalf("\t%s\tTest 0:\tShould report an empty queue: got %v.", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould report an empty queue.", success)

			records := make([]record.Record, 3)
			for i := range records {
				rec, err := record.New(record.Field{Name: "Visit", Value: strconv.Itoa(i)})
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to construct record %d: %v", failed, i, err)
				}
				records[i] = rec
				it.Add(rec)
			}

			if it.Count() != 3 {
				t.Fatalf("\t%s\tTest 0:\tShould count 3 pending records: got %d.", failed, it.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould count 3 pending records.", success)

			for i, want := range records {
				rec, err := it.Pick()
				if err != nil {
					t.Fatalf("\t%s\tTest 0:\tShould be able to pick record %d: %v", failed, i, err)
				}
				if rec.Canonical() != want.Canonical() {
					t.Fatalf("\t%s\tTest 0:\tShould pick records in arrival order: got %s, exp %s.", failed, rec.Canonical(), want.Canonical())
				}
				it.Delete(rec)
			}
			t.Logf("\t%s\tTest 0:\tShould pick records in arrival order.", success)

			if it.Count() != 0 {
				t.Fatalf("\t%s\tTest 0:\tShould be empty after draining: got %d.", failed, it.Count())
			}
			t.Logf("\t%s\tTest 0:\tShould be empty after draining.", success)
		}

		t.Logf("\tTest 1:\tWhen copying and truncating the queue.")
		{
			it := intake.New()

			rec, err := record.New(record.Field{Name: "Visit", Value: "1"})
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct the record: %v", failed, err)
			}
			it.Add(rec)

			cp := it.Copy()
			if len(cp) != 1 || cp[0].Canonical() != rec.Canonical() {
				t.Fatalf("\t%s\tTest 1:\tShould copy the pending records.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould copy the pending records.", success)

			it.Truncate()
			if it.Count() != 0 {
				t.Fatalf("\t%s\tTest 1:\tShould clear the queue on truncate.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould clear the queue on truncate.", success)
		}
	}
}
