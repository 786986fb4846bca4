package main

import (
	"context"
	"time"

	"bitbucket.org/bertimus9/systemstat"

	"github.com/wara-ps/publishd/streamer"
)

type metrics struct {
	stream  streamer.Stats
	cpu     systemstat.CPUSample
	mem     systemstat.MemSample
	loadAvg systemstat.LoadAvgSample
}

func (d *daemon) metricsProcess(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			cpu := systemstat.GetCPUSample()
			mem := systemstat.GetMemSample()
			loadAvg := systemstat.GetLoadAvgSample()
			stream := d.streamer.Stats()

			d.mu.Lock()
			d.metrics.cpu = cpu
			d.metrics.mem = mem
			d.metrics.loadAvg = loadAvg
			d.metrics.stream = stream
			d.mu.Unlock()

			time.Sleep(time.Second * 1)
		}
	}
}
