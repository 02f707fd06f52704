package public

// newRecord is what a client submits to have a record sealed into the
// chain. The unordered fields are fixed into sorted field order before the
// record is queued, so two equal submissions always canonicalize the same.
type newRecord struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

// block represents a block sealed into the chain for the API.
type block struct {
	Number        uint64 `json:"number"`
	PrevBlockHash string `json:"prev_block_hash"`
	TimeStamp     uint64 `json:"timestamp"`
	Nonce         uint64 `json:"nonce"`
	Hash          string `json:"hash"`
	Payload       string `json:"payload"`
}

// tip represents the summary of the latest block in the chain.
type tip struct {
	Number    uint64 `json:"number"`
	Hash      string `json:"hash"`
	Nonce     uint64 `json:"nonce"`
	TimeStamp uint64 `json:"timestamp"`
}

// verdict represents the result of a full chain validation walk.
type verdict struct {
	Valid  bool   `json:"valid"`
	Block  uint64 `json:"block,omitempty"`
	Reason string `json:"reason,omitempty"`
}
