// Package streamer manages a GStreamer pipeline that accepts raw video
// frames from the host application and fans them out to up to two sinks:
// an RTMP publisher and a local preview. Sinks attach to and detach from
// the running pipeline without interrupting each other.
package streamer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gst/go-glib/glib"
	"github.com/go-gst/go-gst/gst"
	"k8s.io/klog"
)

// Config contains the ingestion contract and the encoder settings. All of
// it is fixed for the lifetime of a Streamer.
type Config struct {
	// Dimensions of the raw frames handed to SendFrame
	Width  int
	Height int

	// Declared framerate of the ingested frames
	InputFramerate int
	// Framerate the videorate element normalizes to before the tee
	OutputFramerate int

	// RTMP address the remote branch publishes to
	Address string

	// H.264 encoding bitrate in Kbps
	BitrateKbps int
	// x264 speed preset, e.g. "ultrafast"
	SpeedPreset string
}

func (c Config) withDefaults() Config {
	if c.InputFramerate == 0 {
		c.InputFramerate = 30
	}
	if c.OutputFramerate == 0 {
		c.OutputFramerate = 30
	}
	if c.BitrateKbps == 0 {
		c.BitrateKbps = 3500
	}
	if c.SpeedPreset == "" {
		c.SpeedPreset = "ultrafast"
	}
	return c
}

func (c Config) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", c.Width, c.Height)
	}
	if c.InputFramerate <= 0 || c.OutputFramerate <= 0 {
		return fmt.Errorf("invalid framerate %d/%d", c.InputFramerate, c.OutputFramerate)
	}
	if c.Address == "" {
		return errors.New("no RTMP address configured")
	}
	if c.BitrateKbps <= 0 {
		return fmt.Errorf("invalid bitrate %d", c.BitrateKbps)
	}
	return nil
}

// branch is one attached sink branch and the wiring that connects it to
// the tee. It exists only between Attach and Detach.
type branch struct {
	kind BranchKind
	bin  *gst.Bin

	added      bool // bin added to the pipeline
	tap        *gst.Pad
	ghost      *gst.GhostPad
	ghostAdded bool // ghost pad added to the source bin
}

// Streamer owns the pipeline. All topology changes and all frame
// submissions are serialized on pipeMu; the flow gate has its own lock so
// the appsrc hooks never wait on a topology change in progress.
type Streamer struct {
	cfg Config

	pipeMu sync.Mutex
	gate   flowGate

	pipeline  *gst.Pipeline
	sourceBin *gst.Bin
	appsrc    *gst.Element
	tee       *gst.Element

	// bus is held exactly while the pipeline runs
	bus *gst.Bus

	set  branchSet
	live [branchKindCount]*branch

	hooked       bool
	needDataID   glib.SignalHandle
	enoughDataID glib.SignalHandle

	stats  streamStats
	closed bool
}

// New builds the pipeline with the source bin in place and no branches
// attached. The pipeline stays halted until the first Attach.
func New(c Config) (*Streamer, error) {
	c = c.withDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	gst.Init(nil)

	pipeline, err := gst.NewPipeline("publishd")
	if err != nil {
		return nil, fmt.Errorf("cannot create pipeline: %w", err)
	}

	sourceBin, err := newSourceBin(c)
	if err != nil {
		return nil, fmt.Errorf("cannot create source bin: %w", err)
	}
	if err := pipeline.Add(sourceBin.Element); err != nil {
		return nil, fmt.Errorf("cannot add source bin to pipeline: %w", err)
	}

	appsrc, err := sourceBin.GetElementByName(sourceElementName("appsrc"))
	if err != nil {
		return nil, fmt.Errorf("cannot retrieve appsrc from source bin: %w", err)
	}
	tee, err := sourceBin.GetElementByName(sourceElementName("tee"))
	if err != nil {
		return nil, fmt.Errorf("cannot retrieve tee from source bin: %w", err)
	}

	return &Streamer{
		cfg:       c,
		pipeline:  pipeline,
		sourceBin: sourceBin,
		appsrc:    appsrc,
		tee:       tee,
	}, nil
}

// Attach builds the branch of the given kind and connects it to the tee.
// Attaching an already attached branch is a no-op. The first attached
// branch takes the pipeline to the running state.
func (s *Streamer) Attach(kind BranchKind) error {
	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()

	if s.closed {
		return errors.New("streamer is closed")
	}
	if !kind.valid() {
		return fmt.Errorf("unknown branch kind %d", kind)
	}
	if s.set.isAttached(kind) {
		klog.Infof("%s branch is already attached", kind)
		return nil
	}

	bin, err := newSinkBin(kind, s.cfg)
	if err != nil {
		return fatalf("build "+kind.binName(), "%v", err)
	}
	b := &branch{kind: kind, bin: bin}

	if err := s.wireBranch(b); err != nil {
		s.unwireBranch(b)
		b.bin.SetState(gst.StateNull)
		return err
	}

	if err := b.bin.SetState(gst.StatePlaying); err != nil {
		s.unwireBranch(b)
		b.bin.SetState(gst.StateNull)
		return fatalf("start "+kind.binName(), "%v", err)
	}

	if s.set.count() == 0 {
		if err := s.connectGateHooks(); err != nil {
			s.unwireBranch(b)
			b.bin.SetState(gst.StateNull)
			return fatalf("connect appsrc hooks", "%v", err)
		}
		if err := s.pipeline.SetState(gst.StatePlaying); err != nil {
			s.disconnectGateHooks()
			s.unwireBranch(b)
			b.bin.SetState(gst.StateNull)
			return fatalf("start pipeline", "%v", err)
		}
		s.bus = s.pipeline.GetBus()
	}

	s.set.attach(kind)
	s.live[kind] = b

	klog.Infof("attached %s branch", kind)
	return nil
}

// Detach disconnects the branch from the tee and destroys it. Detaching a
// branch that is not attached is a no-op. The last detached branch takes
// the pipeline back to the halted state.
func (s *Streamer) Detach(kind BranchKind) error {
	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()

	if s.closed {
		return errors.New("streamer is closed")
	}
	if !kind.valid() {
		return fmt.Errorf("unknown branch kind %d", kind)
	}
	if !s.set.isAttached(kind) {
		klog.Infof("%s branch is not attached", kind)
		return nil
	}

	b := s.live[kind]

	if !setLockedState(s.pipeline.Element, true) {
		return fatalf("detach "+kind.binName(), "cannot lock pipeline state")
	}
	s.unwireBranch(b)
	setLockedState(s.pipeline.Element, false)

	b.bin.SetState(gst.StateNull)

	last, _ := s.set.detach(kind)
	s.live[kind] = nil
	if last {
		s.haltLocked()
	}

	klog.Infof("detached %s branch", kind)
	return nil
}

// StartAll attaches the remote branch, then the local preview.
func (s *Streamer) StartAll() error {
	if err := s.Attach(BranchRTMP); err != nil {
		return err
	}
	return s.Attach(BranchLocal)
}

// StopAll detaches both branches in the reverse order of StartAll, leaving
// the pipeline halted.
func (s *Streamer) StopAll() error {
	if err := s.Detach(BranchLocal); err != nil {
		return err
	}
	return s.Detach(BranchRTMP)
}

// Close halts the pipeline and releases every branch. The Streamer must
// not be used afterwards.
func (s *Streamer) Close() error {
	s.pipeMu.Lock()
	defer s.pipeMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	s.disconnectGateHooks()
	s.bus = nil
	s.pipeline.BlockSetState(gst.StateNull)

	for kind, b := range s.live {
		if b == nil {
			continue
		}
		s.unwireBranch(b)
		s.live[kind] = nil
	}
	s.set = branchSet{}

	return nil
}

// wireBranch connects b to the tee: the bin joins the pipeline, a fresh
// tee request pad gets ghosted on the source bin and linked to the bin's
// sink pad. The pipeline state is locked for the duration so the rewiring
// never races a state change.
func (s *Streamer) wireBranch(b *branch) error {
	op := "attach " + b.kind.binName()

	if !setLockedState(s.pipeline.Element, true) {
		return fatalf(op, "cannot lock pipeline state")
	}
	defer setLockedState(s.pipeline.Element, false)

	if err := s.pipeline.Add(b.bin.Element); err != nil {
		return fatalf(op, "cannot add bin to pipeline: %v", err)
	}
	b.added = true

	b.tap = s.tee.GetRequestPad("src_%u")
	if b.tap == nil {
		return fatalf(op, "cannot request src pad from tee")
	}

	ghost, err := newActiveGhostPad(b.kind.ghostPadName(), b.tap, s.sourceBin)
	if err != nil {
		return fatalf(op, "%v", err)
	}
	b.ghost = ghost
	b.ghostAdded = true

	sinkPad := b.bin.GetStaticPad("sink")
	if sinkPad == nil {
		return fatalf(op, "bin has no sink pad")
	}
	if ret := ghost.Pad.Link(sinkPad); ret != gst.PadLinkOK {
		return fatalf(op, "cannot link ghost pad to bin: %v", ret)
	}

	return nil
}

// unwireBranch undoes whatever wireBranch managed to set up, in reverse
// order. Safe on partially wired branches.
func (s *Streamer) unwireBranch(b *branch) {
	if b.ghost != nil {
		if peer := b.ghost.Pad.GetPeer(); peer != nil {
			b.ghost.Pad.Unlink(peer)
		}
		if b.ghostAdded {
			s.sourceBin.RemovePad(b.ghost.Pad)
			b.ghostAdded = false
		}
		b.ghost = nil
	}
	if b.tap != nil {
		s.tee.ReleaseRequestPad(b.tap)
		b.tap = nil
	}
	if b.added {
		s.pipeline.Remove(b.bin.Element)
		b.added = false
	}
}

// haltLocked takes the pipeline down after the last branch detached. The
// bus reference is dropped, which wakes a blocked CheckError, and the gate
// hooks go away so the gate cannot report stale readiness.
func (s *Streamer) haltLocked() {
	if err := s.pipeline.SetState(gst.StateNull); err != nil {
		klog.Warningf("cannot halt pipeline: %v", err)
	}
	s.disconnectGateHooks()
	s.bus = nil
}

func (s *Streamer) connectGateHooks() error {
	if s.hooked {
		return nil
	}

	needID, err := s.appsrc.Connect("need-data", func(_ *gst.Element, _ uint) {
		s.gate.open()
	})
	if err != nil {
		return err
	}
	enoughID, err := s.appsrc.Connect("enough-data", func(_ *gst.Element) {
		s.gate.close()
	})
	if err != nil {
		s.appsrc.HandlerDisconnect(needID)
		return err
	}

	s.needDataID = needID
	s.enoughDataID = enoughID
	s.hooked = true
	return nil
}

func (s *Streamer) disconnectGateHooks() {
	if !s.hooked {
		return
	}
	s.appsrc.HandlerDisconnect(s.needDataID)
	s.appsrc.HandlerDisconnect(s.enoughDataID)
	s.hooked = false
	s.gate.close()
}
