package streamer

import (
	"strings"
	"testing"
)

func TestVideoCapsFilterString(t *testing.T) {
	tests := []struct {
		name string
		caps videoCapsFilter
		want string
	}{
		{
			name: "full",
			caps: videoCapsFilter{Mimetype: "video/x-raw", Format: "RGB", Width: 1920, Height: 1080, Framerate: rational{30, 1}},
			want: "\"video/x-raw,format=RGB,width=1920,height=1080,framerate=30/1\"",
		},
		{
			name: "framerate only",
			caps: videoCapsFilter{Mimetype: "video/x-raw", Framerate: rational{30, 1}},
			want: "\"video/x-raw,framerate=30/1\"",
		},
		{
			name: "mimetype only",
			caps: videoCapsFilter{Mimetype: "video/x-raw"},
			want: "\"video/x-raw\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.caps.string(); got != tt.want {
				t.Errorf("string() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSourceBinDescription(t *testing.T) {
	c := Config{
		Width:           1280,
		Height:          720,
		InputFramerate:  25,
		OutputFramerate: 30,
		Address:         "rtmp://example.org/app/key",
		BitrateKbps:     3500,
		SpeedPreset:     "ultrafast",
	}

	desc := sourceBinDescription(c)

	for _, want := range []string{
		"appsrc name=appsrc_source_bin",
		"is-live=true",
		"block=true",
		"format=time",
		"format=RGB,width=1280,height=720,framerate=25/1",
		"videoconvert name=videoconvert_source_bin",
		"videoscale name=videoscale_source_bin",
		"videorate name=videorate_source_bin",
		"capsfilter name=capsfilter_source_bin caps=\"video/x-raw,framerate=30/1\"",
		"tee name=tee_source_bin",
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("source bin description missing %q:\n%s", want, desc)
		}
	}
}

func TestRTMPSinkBinDescription(t *testing.T) {
	c := Config{
		Address:     "rtmp://example.org/app/key",
		BitrateKbps: 4000,
		SpeedPreset: "veryfast",
	}

	desc := rtmpSinkBinDescription(c)

	for _, want := range []string{
		"x264enc name=x264enc_rtmp",
		"tune=zerolatency",
		"speed-preset=veryfast",
		"bitrate=4000",
		"queue name=queue_rtmp",
		"flvmux name=flvmux_rtmp streamable=true",
		"rtmp2sink name=rtmp2sink_rtmp location=rtmp://example.org/app/key",
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("rtmp sink description missing %q:\n%s", want, desc)
		}
	}
}

func TestLocalSinkBinDescription(t *testing.T) {
	desc := localSinkBinDescription()

	for _, want := range []string{
		"queue name=queue_local",
		"autovideosink name=autovideosink_local",
	} {
		if !strings.Contains(desc, want) {
			t.Errorf("local sink description missing %q:\n%s", want, desc)
		}
	}
}
