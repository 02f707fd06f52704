// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the genesis file. The document fixes the identity of
// the chain: the same document always derives the same genesis block.
type Genesis struct {
	Date       time.Time `json:"date"`
	Name       string    `json:"name"`       // A name for this running ledger instance.
	Marker     string    `json:"marker"`     // The payload carried by the genesis block.
	Difficulty uint16    `json:"difficulty"` // Number of leading 0's needed to solve the work problem.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load() (Genesis, error) {
	path := "zblock/genesis.json"
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
