package chain

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a block doesn't fit on the tip of the
// branch or its header is rejected by consensus.
type ValidationError struct {
	Hash string
	Err  error
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation: blk[%s]: %s", ve.Hash, ve.Err)
}

// Unwrap provides access to the underlying error.
func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

// IsValidation checks if an error of type ValidationError exists.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// =============================================================================

// ExecutionError is returned when the transactions of a block can't be
// executed or don't produce the state root the header claims.
type ExecutionError struct {
	Hash string
	Err  error
}

// Error implements the error interface.
func (ee *ExecutionError) Error() string {
	return fmt.Sprintf("execution: blk[%s]: %s", ee.Hash, ee.Err)
}

// Unwrap provides access to the underlying error.
func (ee *ExecutionError) Unwrap() error {
	return ee.Err
}

// IsExecution checks if an error of type ExecutionError exists.
func IsExecution(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// =============================================================================

// StorageError is returned when reading or writing the store fails.
type StorageError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (se *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %s", se.Op, se.Err)
}

// Unwrap provides access to the underlying error.
func (se *StorageError) Unwrap() error {
	return se.Err
}

// IsStorage checks if an error of type StorageError exists.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
