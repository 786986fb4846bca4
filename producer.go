package main

import (
	"context"
	"time"

	"github.com/wara-ps/publishd/streamer"
)

// produceFrames feeds the pipeline with a synthetic solid-color BGR frame
// at the configured framerate. Frames rejected under backpressure are
// dropped, the next tick paints a fresh one.
func (d *daemon) produceFrames(ctx context.Context) error {
	frame := streamer.Frame{
		Width:    d.width,
		Height:   d.height,
		Channels: 3,
		Data:     make([]byte, d.width*d.height*3),
	}

	fps := d.framerate
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	count := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			paintFrame(frame.Data, count)
			d.streamer.SendFrame(frame)
			count = (count + 1) % 30
		}
	}
}

// paintFrame fills a packed BGR frame with a solid color that cycles
// through blue, green and red, switching every ten ticks.
func paintFrame(data []byte, count int) {
	var b, g, r byte
	switch {
	case count < 10:
		b = 255
	case count < 20:
		g = 255
	default:
		r = 255
	}
	for i := 0; i+2 < len(data); i += 3 {
		data[i] = b
		data[i+1] = g
		data[i+2] = r
	}
}
