package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wara-ps/publishd/streamer"
)

// fakeControl records the calls the command loop makes.
type fakeControl struct {
	calls []string
	err   error
}

func (f *fakeControl) StartAll() error {
	f.calls = append(f.calls, "start_all")
	return f.err
}

func (f *fakeControl) StopAll() error {
	f.calls = append(f.calls, "stop_all")
	return f.err
}

func (f *fakeControl) Attach(k streamer.BranchKind) error {
	f.calls = append(f.calls, "attach_"+k.String())
	return f.err
}

func (f *fakeControl) Detach(k streamer.BranchKind) error {
	f.calls = append(f.calls, "detach_"+k.String())
	return f.err
}

func (f *fakeControl) DumpStatus() string {
	f.calls = append(f.calls, "status")
	return "status report"
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		cmd      string
		wantCall string
	}{
		{"start_stream", "start_all"},
		{"stop_stream", "stop_all"},
		{"start_rtmp_stream", "attach_rtmp"},
		{"stop_rtmp_stream", "detach_rtmp"},
		{"start_local_stream", "attach_local"},
		{"stop_local_stream", "detach_local"},
		{"status", "status"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			ctl := &fakeControl{}
			var out bytes.Buffer
			if err := dispatch(tt.cmd, ctl, &out); err != nil {
				t.Fatalf("dispatch(%q) returned %v", tt.cmd, err)
			}
			if len(ctl.calls) != 1 || ctl.calls[0] != tt.wantCall {
				t.Errorf("dispatch(%q) calls = %v, want [%s]", tt.cmd, ctl.calls, tt.wantCall)
			}
		})
	}
}

func TestDispatchStatusWritesReport(t *testing.T) {
	ctl := &fakeControl{}
	var out bytes.Buffer
	if err := dispatch("status", ctl, &out); err != nil {
		t.Fatalf("dispatch returned %v", err)
	}
	if !strings.Contains(out.String(), "status report") {
		t.Errorf("status output = %q, want it to contain the dump", out.String())
	}
}

func TestDispatchQuit(t *testing.T) {
	ctl := &fakeControl{}
	var out bytes.Buffer
	err := dispatch("quit", ctl, &out)
	if !errors.Is(err, errQuit) {
		t.Errorf("dispatch(quit) = %v, want errQuit", err)
	}
	if len(ctl.calls) != 0 {
		t.Errorf("quit touched the streamer: %v", ctl.calls)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	ctl := &fakeControl{}
	var out bytes.Buffer
	err := dispatch("make_coffee", ctl, &out)
	if err == nil || errors.Is(err, errQuit) {
		t.Errorf("dispatch(unknown) = %v, want plain error", err)
	}
	if len(ctl.calls) != 0 {
		t.Errorf("unknown command touched the streamer: %v", ctl.calls)
	}
}

func TestRunCommandLoopQuit(t *testing.T) {
	ctl := &fakeControl{}
	input := strings.NewReader("start_rtmp_stream\nbogus\n\nstop_rtmp_stream\nquit\n")

	err := runCommandLoop(context.Background(), input, ctl)
	if !errors.Is(err, errQuit) {
		t.Fatalf("runCommandLoop = %v, want errQuit", err)
	}

	want := []string{"attach_rtmp", "detach_rtmp"}
	if len(ctl.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", ctl.calls, want)
	}
	for i := range want {
		if ctl.calls[i] != want[i] {
			t.Errorf("calls[%d] = %s, want %s", i, ctl.calls[i], want[i])
		}
	}
}

func TestRunCommandLoopEndOfInput(t *testing.T) {
	ctl := &fakeControl{}
	input := strings.NewReader("start_local_stream\n")

	if err := runCommandLoop(context.Background(), input, ctl); err != nil {
		t.Fatalf("runCommandLoop = %v, want nil on closed input", err)
	}
	if len(ctl.calls) != 1 || ctl.calls[0] != "attach_local" {
		t.Errorf("calls = %v, want [attach_local]", ctl.calls)
	}
}

func TestRunCommandLoopContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// a reader that never delivers a line must not block the loop
	r := &blockingReader{ch: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		done <- runCommandLoop(ctx, r, &fakeControl{})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runCommandLoop = %v, want nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runCommandLoop did not return after context cancellation")
	}
}

// blockingReader blocks every Read until closed.
type blockingReader struct {
	ch chan struct{}
}

func (b *blockingReader) Read(p []byte) (int, error) {
	<-b.ch
	return 0, nil
}
