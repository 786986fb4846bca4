package streamer

import "sync/atomic"

// streamStats counts submission outcomes. Updated lock-free from the
// submission path, read by Stats.
type streamStats struct {
	submitted      atomic.Uint64
	rejectedEmpty  atomic.Uint64
	rejectedFormat atomic.Uint64
	rejectedGate   atomic.Uint64
	flowErrors     atomic.Uint64
}

// Stats is a point-in-time snapshot of the submission counters.
type Stats struct {
	Submitted      uint64
	RejectedEmpty  uint64
	RejectedFormat uint64
	RejectedGate   uint64
	FlowErrors     uint64
}

func (s *Streamer) Stats() Stats {
	return Stats{
		Submitted:      s.stats.submitted.Load(),
		RejectedEmpty:  s.stats.rejectedEmpty.Load(),
		RejectedFormat: s.stats.rejectedFormat.Load(),
		RejectedGate:   s.stats.rejectedGate.Load(),
		FlowErrors:     s.stats.flowErrors.Load(),
	}
}
