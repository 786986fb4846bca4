package streamer

import (
	"fmt"

	"github.com/go-gst/go-gst/gst"
)

type rational struct {
	Nominator   int
	Denominator int
}

// A videoCapsFilter enforces limitation of formats in the process of linking pads.
type videoCapsFilter struct {
	Mimetype  string
	Format    string
	Width     int
	Height    int
	Framerate rational
}

// Returns a description of the videoCapsFilter instance that can be used in a
// pipeline description.
func (c *videoCapsFilter) string() string {
	str := "\"" + c.Mimetype
	if c.Format != "" {
		str = str + ",format=" + c.Format
	}
	if c.Width > 0 && c.Height > 0 {
		str = str + fmt.Sprintf(",width=%d,height=%d", c.Width, c.Height)
	}
	if c.Framerate.Denominator > 0 {
		str = str + fmt.Sprintf(",framerate=%d/%d", c.Framerate.Nominator, c.Framerate.Denominator)
	}

	return str + "\""
}

// Element names inside the source bin, suffixed with the bin name the way
// all bins here name their elements.
func sourceElementName(factory string) string {
	return factory + "_" + sourceBinName
}

const (
	sourceBinName = "source_bin"
)

// sourceBinDescription builds the launch description of the ingestion chain:
// an appsrc accepting raw RGB frames, format normalization, and the tee the
// sink branches tap into.
func sourceBinDescription(c Config) string {
	appsrcCaps := videoCapsFilter{
		Mimetype:  "video/x-raw",
		Format:    "RGB",
		Width:     c.Width,
		Height:    c.Height,
		Framerate: rational{c.InputFramerate, 1},
	}
	rateCaps := videoCapsFilter{
		Mimetype:  "video/x-raw",
		Framerate: rational{c.OutputFramerate, 1},
	}

	return fmt.Sprintf(
		"appsrc name=%s is-live=true block=true format=time caps=%s ! videoconvert name=%s ! videoscale name=%s ! videorate name=%s ! capsfilter name=%s caps=%s ! tee name=%s",
		sourceElementName("appsrc"),
		appsrcCaps.string(),
		sourceElementName("videoconvert"),
		sourceElementName("videoscale"),
		sourceElementName("videorate"),
		sourceElementName("capsfilter"),
		rateCaps.string(),
		sourceElementName("tee"),
	)
}

// rtmpSinkBinDescription builds the launch description of the remote branch:
// H.264 encoding, FLV muxing, and an RTMP publisher.
func rtmpSinkBinDescription(c Config) string {
	return fmt.Sprintf(
		"x264enc name=x264enc_%[1]s tune=zerolatency speed-preset=%[2]s bitrate=%[3]d ! queue name=queue_%[1]s ! flvmux name=flvmux_%[1]s streamable=true ! rtmp2sink name=rtmp2sink_%[1]s location=%[4]s",
		BranchRTMP,
		c.SpeedPreset,
		c.BitrateKbps,
		c.Address,
	)
}

// localSinkBinDescription builds the launch description of the local
// preview branch.
func localSinkBinDescription() string {
	return fmt.Sprintf(
		"queue name=queue_%[1]s ! autovideosink name=autovideosink_%[1]s",
		BranchLocal,
	)
}

// Creates the source bin. Ghost pads towards the sink branches are created
// on demand when a branch is attached, so no automatic ghost pads here.
func newSourceBin(c Config) (*gst.Bin, error) {
	bin, err := gst.NewBinFromString(sourceBinDescription(c), false)
	if err != nil {
		return nil, err
	}
	bin.Element.SetProperty("name", sourceBinName)

	return bin, nil
}

// Creates the sink bin for kind with a single sink ghost-pad.
func newSinkBin(kind BranchKind, c Config) (*gst.Bin, error) {
	var desc string
	switch kind {
	case BranchRTMP:
		desc = rtmpSinkBinDescription(c)
	case BranchLocal:
		desc = localSinkBinDescription()
	default:
		return nil, fmt.Errorf("unknown branch kind %d", kind)
	}

	// Automatically create ghost-pads for all unlinked pads. In this case
	// this is the queue sink pad.
	bin, err := gst.NewBinFromString(desc, true)
	if err != nil {
		return nil, err
	}
	bin.Element.SetProperty("name", kind.binName())

	return bin, nil
}

func newActiveGhostPad(name string, target *gst.Pad, bin *gst.Bin) (*gst.GhostPad, error) {
	ghost_pad := gst.NewGhostPad(name, target)
	if ghost_pad == nil {
		return nil, fmt.Errorf("unable to create ghost pad '%s'", name)
	}

	if ghost_pad.SetActive(true) == false {
		return nil, fmt.Errorf("failed to activate ghost pad '%s'", name)
	}

	if bin.AddPad(ghost_pad.Pad) == false {
		return nil, fmt.Errorf("failed to add pad '%s' to bin '%s'", name, bin.GetName())
	}

	return ghost_pad, nil
}
