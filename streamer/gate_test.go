package streamer

import (
	"sync"
	"testing"
)

func TestFlowGateStartsClosed(t *testing.T) {
	var g flowGate
	if g.isReady() {
		t.Error("fresh gate reports ready")
	}
}

func TestFlowGateToggle(t *testing.T) {
	var g flowGate

	g.open()
	if !g.isReady() {
		t.Error("gate not ready after open")
	}

	g.close()
	if g.isReady() {
		t.Error("gate ready after close")
	}

	// repeated transitions must be harmless
	g.open()
	g.open()
	if !g.isReady() {
		t.Error("gate not ready after repeated open")
	}
	g.close()
	g.close()
	if g.isReady() {
		t.Error("gate ready after repeated close")
	}
}

func TestFlowGateConcurrentToggle(t *testing.T) {
	var g flowGate
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(open bool) {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if open {
					g.open()
				} else {
					g.close()
				}
				g.isReady()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	g.close()
	if g.isReady() {
		t.Error("gate ready after final close")
	}
}
