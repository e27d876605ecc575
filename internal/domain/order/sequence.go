package order

import (
	"strconv"
	"sync/atomic"
)

// IDPrefix starts every order ID.
const IDPrefix = "ORD"

// DefaultFirstSequence is the counter value before the first order; the
// first issued ID is ORD1001.
const DefaultFirstSequence = 1000

// Sequence issues monotonically increasing order IDs.
type Sequence struct {
	n atomic.Int64
}

// NewSequence returns a Sequence whose first ID is start+1.
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.n.Store(start)
	return s
}

// Next returns the next ID.
func (s *Sequence) Next() string {
	return IDPrefix + strconv.FormatInt(s.n.Add(1), 10)
}
