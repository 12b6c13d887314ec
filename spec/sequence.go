package spec

import "sync/atomic"

// Sequencer hands out increasing request numbers so that a front-end can
// drop the result of a load once a newer one has been issued
type Sequencer struct {
	latest uint64
}

// Next returns the number of a new request
func (s *Sequencer) Next() uint64 {
	return atomic.AddUint64(&s.latest, 1)
}

// IsLatest returns true if no request was issued after seq
func (s *Sequencer) IsLatest(seq uint64) bool {
	return atomic.LoadUint64(&s.latest) == seq
}
