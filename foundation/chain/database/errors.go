package database

import (
	"errors"
	"fmt"
)

// Set of error variables for the checks a block can fail.
var (
	ErrWrongSequence = errors.New("block is not the next number in the sequence")
	ErrHashMismatch  = errors.New("block hash does not match the block contents")
	ErrHashNotSolved = errors.New("block hash does not meet the difficulty rule")
	ErrLinkageBroken = errors.New("block is not linked to the parent block hash")
)

// BlockError identifies the block that failed a validation check and which
// check failed.
type BlockError struct {
	Number uint64
	Err    error
}

// Error implements the error interface.
func (be *BlockError) Error() string {
	return fmt.Sprintf("block %d: %s", be.Number, be.Err)
}

// Unwrap exposes the underlying check failure for errors.Is tests.
func (be *BlockError) Unwrap() error {
	return be.Err
}
