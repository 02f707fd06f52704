package state

// ValidateChain walks the whole chain re-checking every block's stored hash
// and linkage. The first failure is returned as a database.BlockError.
func (s *State) ValidateChain() error {
	return s.db.Validate()
}

// IsChainValid reports the minimal boolean form of ValidateChain.
func (s *State) IsChainValid() bool {
	return s.db.IsValid()
}
