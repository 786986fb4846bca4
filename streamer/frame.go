package streamer

import (
	"time"

	"k8s.io/klog"
)

// Buffers are stamped with a fixed nominal duration rather than the
// distance to the previous frame. At the normalized 30 Hz output rate the
// videorate element corrects the difference.
const frameDuration = uint64(time.Second / 30)

// Frame is one raw video frame in packed interleaved form. Channels must
// be 3 (BGR) or 4 (BGRA).
type Frame struct {
	Width    int
	Height   int
	Channels int
	Data     []byte
}

// valid reports whether the frame can be converted for ingestion. A frame
// with dimensions must carry exactly Width*Height*Channels bytes.
func (f Frame) valid() bool {
	if f.Channels != 3 && f.Channels != 4 {
		return false
	}
	if f.Width > 0 && f.Height > 0 && len(f.Data) != f.Width*f.Height*f.Channels {
		return false
	}
	return true
}

// rgb converts the frame to the packed RGB layout the appsrc advertises.
func (f Frame) rgb() []byte {
	if f.Channels == 4 {
		return bgraToRGB(f.Data)
	}
	return bgrToRGB(f.Data)
}

// SendFrame converts f and pushes it into the pipeline. The return value
// reports whether the frame was accepted; a false return has no side
// effects on the graph and carries no diagnostics, rejection under
// backpressure is the normal operating mode. f is not retained.
func (s *Streamer) SendFrame(f Frame) bool {
	if len(f.Data) == 0 {
		klog.Warning("dropping empty frame")
		s.stats.rejectedEmpty.Add(1)
		return false
	}
	if !f.valid() {
		klog.Warningf("dropping frame with unsupported layout: %dx%d, %d channels, %d bytes",
			f.Width, f.Height, f.Channels, len(f.Data))
		s.stats.rejectedFormat.Add(1)
		return false
	}

	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()

	if !s.gateOpenLocked() {
		s.stats.rejectedGate.Add(1)
		return false
	}

	return s.pushLocked(f.rgb())
}

// SendFrameBytes pushes a frame that is already in the packed RGB wire
// layout, skipping conversion.
func (s *Streamer) SendFrameBytes(data []byte) bool {
	if len(data) == 0 {
		klog.Warning("dropping empty frame")
		s.stats.rejectedEmpty.Add(1)
		return false
	}

	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()

	if !s.gateOpenLocked() {
		s.stats.rejectedGate.Add(1)
		return false
	}

	return s.pushLocked(data)
}

func (s *Streamer) gateOpenLocked() bool {
	return !s.closed && s.gate.isReady()
}

// pushLocked stamps data with the current running time and hands exactly
// one buffer to the appsrc. PTS equals DTS, frames are submitted in
// presentation order.
func (s *Streamer) pushLocked(data []byte) bool {
	ts, ok := elementRunningTime(s.appsrc)
	if !ok {
		klog.Warning("appsrc has no clock, dropping frame")
		s.stats.flowErrors.Add(1)
		return false
	}

	if !appsrcPush(s.appsrc, data, ts, frameDuration) {
		s.stats.flowErrors.Add(1)
		return false
	}

	s.stats.submitted.Add(1)
	return true
}
