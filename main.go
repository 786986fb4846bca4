package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/go-gst/go-gst/gst"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog"

	"github.com/wara-ps/publishd/streamer"
)

// daemonConfig contains all configurable parameters
type daemonConfig struct {
	listenHTTP string

	// dimensions of the ingested raw frames
	width  int
	height int
	// framerate the ingested frames are declared and normalized at
	framerate int

	// RTMP address to publish the remote branch to
	address string

	videoEncBitrateKbps int
	// x264 speed preset for the remote branch encoder
	speedPreset string

	// whether to feed the pipeline from the built-in synthetic producer
	withProducer bool
	// whether to attach both branches at startup
	autoStart bool
}

// daemon is the main service of publishd
type daemon struct {
	daemonConfig

	sessionID string
	streamer  *streamer.Streamer

	// mu guards the state below.
	mu sync.RWMutex
	daemonState
}

// daemonState contains all the state of the daemon
type daemonState struct {
	metrics metrics
}

// daemonController provides a MT-safe interface for other
// parts of the application (e.g. HTTP server or metrics collector)
type daemonController interface {
	metricsSnapshot() metrics
	graph(details gst.DebugGraphDetails) string
	status() string
	session() string
}

// get a snapshot of the current metrics
func (d *daemon) metricsSnapshot() metrics {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.metrics
}

// get the current filter graph as 'text/vnd.graphviz'
func (d *daemon) graph(details gst.DebugGraphDetails) string {
	return d.streamer.DotGraph(details)
}

func (d *daemon) status() string {
	return d.streamer.DumpStatus()
}

func (d *daemon) session() string {
	return d.sessionID
}

// monitorProcess drains stop conditions from the pipeline bus and logs
// them. A stop condition halts nothing on its own; branches stay attached
// until an operator detaches them.
func (d *daemon) monitorProcess(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if d.streamer.CheckError() {
			klog.Warning("pipeline requested stop")
			continue
		}
		// Pipeline is halted, poll until it runs again
		select {
		case <-ctx.Done():
			return
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func main() {
	d := &daemon{}

	flag.StringVar(&d.listenHTTP, "http-port", "8080", "Port at which to listen for HTTP requests")
	flag.IntVar(&d.width, "width", 1920, "Width of the ingested raw frames")
	flag.IntVar(&d.height, "height", 1080, "Height of the ingested raw frames")
	flag.IntVar(&d.framerate, "framerate", 30, "Framerate of the ingested raw frames")
	flag.StringVar(&d.address, "address", "rtmp://ome.waraps.org/app/name-your-stream", "RTMP address to publish to")
	flag.IntVar(&d.videoEncBitrateKbps, "video-enc-bitrate", 3500, "Video encoding bitrate in Kbps")
	flag.StringVar(&d.speedPreset, "speed-preset", "ultrafast", "x264 speed preset for the remote branch encoder")
	flag.BoolVar(&d.withProducer, "test-producer", false, "Feed the pipeline from the built-in synthetic frame producer")
	flag.BoolVar(&d.autoStart, "auto-start", false, "Attach the remote and local branches at startup")
	flag.Parse()

	d.sessionID = uuid.NewString()
	klog.Infof("publishd session %s", d.sessionID)

	gst.Init(&os.Args)

	var err error
	d.streamer, err = streamer.New(streamer.Config{
		Width:           d.width,
		Height:          d.height,
		InputFramerate:  d.framerate,
		OutputFramerate: d.framerate,
		Address:         d.address,
		BitrateKbps:     d.videoEncBitrateKbps,
		SpeedPreset:     d.speedPreset,
	})
	if err != nil {
		klog.Fatalf("cannot construct streamer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Create and start HTTP server
	h := &httpServer{d}
	h.setupHTTPHandlers()

	klog.Infof("listening for HTTP at :%s", d.listenHTTP)
	go func() {
		if err := http.ListenAndServe(":"+d.listenHTTP, nil); err != nil {
			klog.Errorf("HTTP listen failed: %v", err)
		}
	}()

	if d.autoStart {
		if err := d.streamer.StartAll(); err != nil {
			klog.Fatalf("cannot start stream: %v", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d.metricsProcess(ctx)
		return nil
	})
	g.Go(func() error {
		d.monitorProcess(ctx)
		return nil
	})
	if d.withProducer {
		g.Go(func() error {
			return d.produceFrames(ctx)
		})
	}
	g.Go(func() error {
		return runCommandLoop(ctx, os.Stdin, d.streamer)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		klog.Errorf("daemon task failed: %v", err)
	}

	if err := d.streamer.Close(); err != nil {
		klog.Errorf("cannot close streamer: %v", err)
	}
}
