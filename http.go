package main

import (
	"fmt"
	"net/http"

	"github.com/go-gst/go-gst/gst"
)

type httpServer struct {
	daemonController
}

func writeFrameStats(w http.ResponseWriter, m *metrics, session string) {
	fmt.Fprintf(w, "# HELP publishd_frames_submitted_total Frames accepted into the pipeline\n")
	fmt.Fprintf(w, "# TYPE publishd_frames_submitted_total counter\n")
	fmt.Fprintf(w, "publishd_frames_submitted_total{session=\"%s\"} %d\n", session, m.stream.Submitted)

	fmt.Fprintf(w, "# HELP publishd_frames_rejected_empty_total Frames rejected for empty payload\n")
	fmt.Fprintf(w, "# TYPE publishd_frames_rejected_empty_total counter\n")
	fmt.Fprintf(w, "publishd_frames_rejected_empty_total{session=\"%s\"} %d\n", session, m.stream.RejectedEmpty)

	fmt.Fprintf(w, "# HELP publishd_frames_rejected_format_total Frames rejected for unsupported layout\n")
	fmt.Fprintf(w, "# TYPE publishd_frames_rejected_format_total counter\n")
	fmt.Fprintf(w, "publishd_frames_rejected_format_total{session=\"%s\"} %d\n", session, m.stream.RejectedFormat)

	fmt.Fprintf(w, "# HELP publishd_frames_rejected_gate_total Frames rejected under backpressure\n")
	fmt.Fprintf(w, "# TYPE publishd_frames_rejected_gate_total counter\n")
	fmt.Fprintf(w, "publishd_frames_rejected_gate_total{session=\"%s\"} %d\n", session, m.stream.RejectedGate)

	fmt.Fprintf(w, "# HELP publishd_frame_flow_errors_total Frames the appsrc refused\n")
	fmt.Fprintf(w, "# TYPE publishd_frame_flow_errors_total counter\n")
	fmt.Fprintf(w, "publishd_frame_flow_errors_total{session=\"%s\"} %d\n", session, m.stream.FlowErrors)
}

// Minimalist prometheus exporter
func (h *httpServer) metrics(w http.ResponseWriter, r *http.Request) {
	m := h.metricsSnapshot()

	/* CPU */

	cpuTime := m.cpu.Time.UnixMilli()
	fmt.Fprintf(w, "# HELP linux_proc_user_total Time spent in user mode, in ticks\n")
	fmt.Fprintf(w, "# TYPE linux_proc_user_total counter\n")
	fmt.Fprintf(w, "linux_proc_user_total %d %d\n", m.cpu.User, cpuTime)

	fmt.Fprintf(w, "# HELP linux_proc_system_total Time spent in system mode, in ticks\n")
	fmt.Fprintf(w, "# TYPE linux_proc_system_total counter\n")
	fmt.Fprintf(w, "linux_proc_system_total %d %d\n", m.cpu.System, cpuTime)

	fmt.Fprintf(w, "# HELP linux_proc_iowait_total Time spent waiting for I/O to complete, in ticks\n")
	fmt.Fprintf(w, "# TYPE linux_proc_iowait_total counter\n")
	fmt.Fprintf(w, "linux_proc_iowait_total %d %d\n", m.cpu.Iowait, cpuTime)

	/* Memory */

	memTime := m.mem.Time.UnixMilli()
	fmt.Fprintf(w, "# HELP linux_mem_used_bytes Amount of memory used, in bytes\n")
	fmt.Fprintf(w, "# TYPE linux_mem_used_bytes gauge\n")
	fmt.Fprintf(w, "linux_mem_used_bytes %d %d\n", m.mem.MemUsed*1024, memTime)

	fmt.Fprintf(w, "# HELP linux_mem_free_bytes Amount of free memory, in bytes\n")
	fmt.Fprintf(w, "# TYPE linux_mem_free_bytes gauge\n")
	fmt.Fprintf(w, "linux_mem_free_bytes %d %d\n", m.mem.MemFree*1024, memTime)

	/* Load Average */

	loadAvgTime := m.loadAvg.Time.UnixMilli()
	fmt.Fprintf(w, "# HELP load_avg_one Load average over one minute\n")
	fmt.Fprintf(w, "# TYPE load_avg_one gauge\n")
	fmt.Fprintf(w, "load_avg_one %f %d\n", m.loadAvg.One, loadAvgTime)

	fmt.Fprintf(w, "# HELP load_avg_five Load average over five minutes\n")
	fmt.Fprintf(w, "# TYPE load_avg_five gauge\n")
	fmt.Fprintf(w, "load_avg_five %f %d\n", m.loadAvg.Five, loadAvgTime)

	fmt.Fprintf(w, "# HELP load_avg_fifteen Load average over fifteen minutes\n")
	fmt.Fprintf(w, "# TYPE load_avg_fifteen gauge\n")
	fmt.Fprintf(w, "load_avg_fifteen %f %d\n", m.loadAvg.Fifteen, loadAvgTime)

	/* Frame submission */

	writeFrameStats(w, &m, h.session())
}

const (
	graphDetailMediaType        = "media-type"
	graphDetailCaps             = "caps"
	graphDetailNonDefaultParams = "non-default-params"
	graphDetailStates           = "states"
	graphDetailFullParams       = "full-params"
	graphDetailAll              = "all"
	graphDetailVerbose          = "verbose"
)

func (h *httpServer) graph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	val := q.Get("details")

	var details gst.DebugGraphDetails
	switch val {
	case graphDetailMediaType:
		details = gst.DebugGraphShowMediaType
	case graphDetailCaps:
		details = gst.DebugGraphShowCapsDetails
	case graphDetailNonDefaultParams:
		details = gst.DebugGraphShowNonDefaultParams
	case graphDetailStates:
		details = gst.DebugGraphShowStates
	case graphDetailFullParams:
		details = gst.DebugGraphShowPullParams
	case graphDetailAll:
		details = gst.DebugGraphShowAll
	case graphDetailVerbose:
		details = gst.DebugGraphShowVerbose
	default:
		details = gst.DebugGraphShowStates
	}

	dot := h.daemonController.graph(details)
	w.Header().Add("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(dot))
}

func (h *httpServer) status(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, h.daemonController.status())
}

func (h *httpServer) setupHTTPHandlers() {
	http.HandleFunc("/metrics", h.metrics)
	http.HandleFunc("/graph", h.graph)
	http.HandleFunc("/status", h.status)
}
