package streamer

import "k8s.io/klog"

// CheckError blocks until the pipeline reports a stop condition: an
// element error or end-of-stream. It returns true when a stop condition
// arrived and false when the pipeline is not running or went down while
// waiting. Bus messages of any other category are left for other
// consumers and never end the wait.
//
// The caller decides what a stop condition means; CheckError never alters
// the graph.
func (s *Streamer) CheckError() bool {
	s.pipeMu.Lock()
	bus := s.bus
	s.pipeMu.Unlock()

	if bus == nil {
		return false
	}

	cond := busWaitStopCondition(bus)
	if cond == nil {
		return false
	}

	if cond.EOS {
		klog.Infof("end of stream reached from element %s", cond.Src)
		return true
	}

	klog.Errorf("error from element %s: %s", cond.Src, cond.Message)
	if cond.Debug != "" {
		klog.Errorf("debugging information: %s", cond.Debug)
	}
	return true
}
