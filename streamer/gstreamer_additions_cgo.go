package streamer

// TODO: this should be upstreamed

// #cgo pkg-config: glib-2.0 gstreamer-1.0 gstreamer-app-1.0
// #include <glib-object.h>
// #include <gst/gst.h>
// #include <gst/app/gstappsrc.h>
import "C"
import (
	"unsafe"

	"github.com/go-gst/go-gst/gst"
)

// setLockedState toggles the locked-state flag, keeping the element out of
// parent-driven state changes while the topology around it is rewired.
// gst_element_set_locked_state is sadly not in go-gst.
func setLockedState(e *gst.Element, locked bool) bool {
	ptr := (*C.GstElement)(unsafe.Pointer(e.Instance()))

	l := C.gboolean(0)
	if locked {
		l = C.gboolean(1)
	}

	return C.gst_element_set_locked_state(ptr, l) != 0
}

// elementRunningTime returns the running time of the clock the element is
// slaved to, in nanoseconds. ok is false when the element has no clock,
// which is the case whenever its pipeline is not running.
func elementRunningTime(e *gst.Element) (ts uint64, ok bool) {
	ptr := (*C.GstElement)(unsafe.Pointer(e.Instance()))

	clock := C.gst_element_get_clock(ptr)
	if clock == nil {
		return 0, false
	}
	defer C.gst_object_unref(C.gpointer(unsafe.Pointer(clock)))

	base := C.gst_element_get_base_time(ptr)
	now := C.gst_clock_get_time(clock)
	if now < base {
		return 0, false
	}

	return uint64(now - base), true
}

// appsrcPush hands one buffer to an appsrc element, stamped with identical
// PTS and DTS and an explicit duration. The buffer is a copy of data, the
// caller keeps ownership of the slice.
func appsrcPush(e *gst.Element, data []byte, ts uint64, duration uint64) bool {
	if len(data) == 0 {
		return false
	}

	buf := C.gst_buffer_new_allocate(nil, C.gsize(len(data)), nil)
	if buf == nil {
		return false
	}
	C.gst_buffer_fill(buf, 0, C.gconstpointer(unsafe.Pointer(&data[0])), C.gsize(len(data)))

	buf.pts = C.GstClockTime(ts)
	buf.dts = C.GstClockTime(ts)
	buf.duration = C.GstClockTime(duration)

	src := (*C.GstAppSrc)(unsafe.Pointer(e.Instance()))

	// Takes ownership of buf
	return C.gst_app_src_push_buffer(src, buf) == C.GST_FLOW_OK
}

// stopCondition is a bus message that requires operator attention. EOS
// distinguishes a clean end-of-stream from an element error.
type stopCondition struct {
	EOS     bool
	Src     string
	Message string
	Debug   string
}

// busWaitStopCondition blocks until the bus delivers an error or an
// end-of-stream message. A nil return means the bus was flushed, i.e. the
// pipeline left the running state. Messages of any other category never
// wake this up.
func busWaitStopCondition(b *gst.Bus) *stopCondition {
	ptr := (*C.GstBus)(unsafe.Pointer(b.Instance()))

	msg := C.gst_bus_timed_pop_filtered(
		ptr,
		C.GstClockTime(C.GST_CLOCK_TIME_NONE),
		C.GstMessageType(C.GST_MESSAGE_ERROR|C.GST_MESSAGE_EOS),
	)
	if msg == nil {
		return nil
	}
	defer C.gst_message_unref(msg)

	cond := &stopCondition{}

	if msg.src != nil {
		name := C.gst_object_get_name(msg.src)
		if name != nil {
			cond.Src = C.GoString(name)
			C.g_free(C.gpointer(unsafe.Pointer(name)))
		}
	}

	if msg._type&C.GST_MESSAGE_EOS != 0 {
		cond.EOS = true
		return cond
	}

	var gerr *C.GError
	var dbg *C.gchar
	C.gst_message_parse_error(msg, &gerr, &dbg)
	if gerr != nil {
		cond.Message = C.GoString(gerr.message)
		C.g_error_free(gerr)
	}
	if dbg != nil {
		cond.Debug = C.GoString(dbg)
		C.g_free(C.gpointer(unsafe.Pointer(dbg)))
	}

	return cond
}
