package streamer

import (
	"fmt"
	"strings"

	"github.com/go-gst/go-gst/gst"
)

var sourceElementFactories = []string{
	"appsrc",
	"videoconvert",
	"videoscale",
	"videorate",
	"capsfilter",
	"tee",
}

// DumpStatus renders a point-in-time report of element states and pad
// links. Read-only, the graph is never altered.
func (s *Streamer) DumpStatus() string {
	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()

	var sb strings.Builder

	fmt.Fprintf(&sb, "pipeline: %s\n", s.pipeline.GetCurrentState())
	fmt.Fprintf(&sb, "attached branches: %d\n", s.set.count())
	fmt.Fprintf(&sb, "gate ready: %t\n", s.gate.isReady())

	fmt.Fprintf(&sb, "%s: %s\n", sourceBinName, s.sourceBin.GetCurrentState())
	for _, factory := range sourceElementFactories {
		name := sourceElementName(factory)
		el, err := s.sourceBin.GetElementByName(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "  %s: %s", name, el.GetCurrentState())
		if p := el.GetStaticPad("sink"); p != nil {
			fmt.Fprintf(&sb, " sink_linked=%t", p.IsLinked())
		}
		if p := el.GetStaticPad("src"); p != nil {
			fmt.Fprintf(&sb, " src_linked=%t", p.IsLinked())
		}
		sb.WriteByte('\n')
	}

	for _, b := range s.live {
		if b == nil {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s tap_linked=%t", b.kind.binName(), b.bin.GetCurrentState(), b.tap.IsLinked())
		if p := b.bin.GetStaticPad("sink"); p != nil {
			fmt.Fprintf(&sb, " sink_linked=%t", p.IsLinked())
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// DotGraph returns the filter graph as 'text/vnd.graphviz'.
func (s *Streamer) DotGraph(details gst.DebugGraphDetails) string {
	s.pipeMu.Lock()
	p := s.pipeline
	s.pipeMu.Unlock()

	return p.DebugBinToDotData(details)
}
