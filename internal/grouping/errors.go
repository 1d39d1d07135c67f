package grouping

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedTimestamp   = errors.New("malformed timestamp")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrBatchTooLarge        = errors.New("batch too large")
)

// RejectedRecord describes a read that was left out of grouping.
type RejectedRecord struct {
	Index int
	ID    int64
	Err   error
}

func (r RejectedRecord) Error() string {
	return fmt.Sprintf("record %d (index %d): %v", r.ID, r.Index, r.Err)
}

func (r RejectedRecord) Unwrap() error {
	return r.Err
}
