package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"k8s.io/klog"

	"github.com/wara-ps/publishd/streamer"
)

// errQuit ends the command loop without touching the attached branches.
var errQuit = errors.New("quit requested")

// streamControl is the slice of the streamer the command loop drives.
type streamControl interface {
	StartAll() error
	StopAll() error
	Attach(streamer.BranchKind) error
	Detach(streamer.BranchKind) error
	DumpStatus() string
}

func dispatch(cmd string, ctl streamControl, out io.Writer) error {
	switch cmd {
	case "start_stream":
		return ctl.StartAll()
	case "stop_stream":
		return ctl.StopAll()
	case "start_rtmp_stream":
		return ctl.Attach(streamer.BranchRTMP)
	case "stop_rtmp_stream":
		return ctl.Detach(streamer.BranchRTMP)
	case "start_local_stream":
		return ctl.Attach(streamer.BranchLocal)
	case "stop_local_stream":
		return ctl.Detach(streamer.BranchLocal)
	case "status":
		fmt.Fprintln(out, ctl.DumpStatus())
		return nil
	case "quit":
		return errQuit
	}
	return fmt.Errorf("unknown command %q", cmd)
}

// runCommandLoop reads commands line by line from r and applies them to
// ctl. Command errors are logged and the loop carries on; only "quit", a
// closed reader, or context cancellation end it. Reading happens on its
// own goroutine so a quiet r never blocks shutdown.
func runCommandLoop(ctx context.Context, r io.Reader, ctl streamControl) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if line == "" {
				continue
			}
			err := dispatch(line, ctl, klogWriter{})
			if errors.Is(err, errQuit) {
				klog.Info("quit requested, leaving command loop")
				return errQuit
			}
			if err != nil {
				klog.Errorf("command %q failed: %v", line, err)
			}
		}
	}
}

// klogWriter routes command output through the daemon log.
type klogWriter struct{}

func (klogWriter) Write(p []byte) (int, error) {
	klog.Info(string(p))
	return len(p), nil
}
