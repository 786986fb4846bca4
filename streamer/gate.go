package streamer

import "sync"

// flowGate mirrors the appsrc's willingness to accept buffers. The
// need-data and enough-data hooks toggle it from GStreamer streaming
// threads, frame submission polls it. It has its own lock so the hooks
// never contend with topology changes.
type flowGate struct {
	mu    sync.Mutex
	ready bool
}

func (g *flowGate) open() {
	g.mu.Lock()
	g.ready = true
	g.mu.Unlock()
}

func (g *flowGate) close() {
	g.mu.Lock()
	g.ready = false
	g.mu.Unlock()
}

func (g *flowGate) isReady() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ready
}
