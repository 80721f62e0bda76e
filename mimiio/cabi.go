//go:build cgo

// This file is the literal C-ABI surface from spec.md §6, isolated here the
// way drgolem/go-flac isolates its own "import C" block to encoder.go. The
// cgo build constraint compiles it into every build with cgo enabled
// (including test builds) and leaves it out when cgo is disabled.
package mimiio

/*
#include <stdint.h>
#include <stdbool.h>
#include <stddef.h>

typedef struct { char key[1024]; char value[1024]; } mimiio_http_header_t;

typedef void (*mimi_tx_callback_t)(uint8_t *buf, size_t *len, bool *recog_break, int32_t *tx_error, void *userdata);
typedef void (*mimi_rx_callback_t)(const uint8_t *result, size_t len, int32_t *rx_error, void *userdata);

// cgo cannot invoke a C function pointer directly; these thin shims are the
// indirection point so mimi_open's Go closures can call back into whatever
// tx/rx function the caller passed in.
static inline void mimi_invoke_tx(mimi_tx_callback_t f, uint8_t *buf, size_t *len, bool *recog_break, int32_t *tx_error, void *userdata) {
    f(buf, len, recog_break, tx_error, userdata);
}
static inline void mimi_invoke_rx(mimi_rx_callback_t f, const uint8_t *result, size_t len, int32_t *rx_error, void *userdata) {
    f(result, len, rx_error, userdata);
}
*/
import "C"

import (
	"context"
	"runtime/cgo"
	"unsafe"
)

// handleBox lets a cgo.Handle round-trip through a C void* the same way
// drgolem-go-flac's encoderWriteCallback round-trips *FlacEncoder.
type handleBox struct {
	sess *Session
	udTx unsafe.Pointer
	udRx unsafe.Pointer
}

//export mimi_open
func mimi_open(
	host *C.char, port C.int,
	onTx C.mimi_tx_callback_t, onRx C.mimi_rx_callback_t,
	udTx, udRx unsafe.Pointer,
	format C.int, rate, channels C.int,
	headers *C.mimiio_http_header_t, headersLen C.int,
	token *C.char, loglevel C.int,
	outErrorno *C.int32_t,
) unsafe.Pointer {
	cfg := Config{
		Host:     C.GoString(host),
		Port:     int(port),
		Format:   AudioFormat(format),
		Rate:     int(rate),
		Channels: int(channels),
		LogLevel: int(loglevel),
	}
	if token != nil {
		cfg.Token = C.GoString(token)
	}
	if headersLen > 0 && headers != nil {
		hdrSlice := unsafe.Slice(headers, int(headersLen))
		for _, h := range hdrSlice {
			cfg.Headers = append(cfg.Headers, Header{
				Key:   C.GoString((*C.char)(unsafe.Pointer(&h.key[0]))),
				Value: C.GoString((*C.char)(unsafe.Pointer(&h.value[0]))),
			})
		}
	}

	box := &handleBox{udTx: udTx, udRx: udRx}

	cfg.Tx = func(buf []byte) (int, bool, int32) {
		if onTx == nil {
			return 0, true, int32(ErrTxCallbackMissing)
		}
		var length C.size_t = C.size_t(len(buf))
		var recogBreak C.bool
		var txErr C.int32_t
		C.mimi_invoke_tx(onTx, (*C.uint8_t)(unsafe.Pointer(&buf[0])), &length, &recogBreak, &txErr, box.udTx)
		return int(length), bool(recogBreak), int32(txErr)
	}
	cfg.Rx = func(payload []byte, isText bool) int32 {
		if onRx == nil {
			return int32(ErrRxCallbackMissing)
		}
		var rxErr C.int32_t
		var ptr *C.uint8_t
		n := len(payload)
		if isText {
			// Text results reach C callers NUL-terminated; the reported
			// length excludes the terminator.
			payload = append(payload[:n:n], 0)
		}
		if len(payload) > 0 {
			ptr = (*C.uint8_t)(unsafe.Pointer(&payload[0]))
		}
		C.mimi_invoke_rx(onRx, ptr, C.size_t(n), &rxErr, box.udRx)
		return int32(rxErr)
	}

	sess, err := Open(context.Background(), cfg)
	if err != nil {
		if outErrorno != nil {
			if ec, ok := err.(ErrorCode); ok {
				*outErrorno = C.int32_t(ec)
			} else {
				*outErrorno = C.int32_t(ErrUnknown)
			}
		}
		return nil
	}
	box.sess = sess
	h := cgo.NewHandle(box)
	return unsafe.Pointer(&h)
}

//export mimi_start
func mimi_start(handle unsafe.Pointer) C.int32_t {
	box := boxFromHandle(handle)
	if box == nil {
		return C.int32_t(ErrCouldNotStart)
	}
	if err := box.sess.Start(); err != nil {
		if ec, ok := err.(ErrorCode); ok {
			return C.int32_t(ec)
		}
		return C.int32_t(ErrCouldNotStart)
	}
	return 0
}

//export mimi_is_active
func mimi_is_active(handle unsafe.Pointer) C.bool {
	box := boxFromHandle(handle)
	if box == nil {
		return false
	}
	return C.bool(box.sess.IsActive())
}

//export mimi_stream_state
func mimi_stream_state(handle unsafe.Pointer) C.int {
	box := boxFromHandle(handle)
	if box == nil {
		return C.int(StateClosed)
	}
	return C.int(box.sess.StreamState())
}

//export mimi_close
func mimi_close(handle unsafe.Pointer) {
	box := boxFromHandle(handle)
	if box == nil {
		return
	}
	box.sess.Close()
	(*(*cgo.Handle)(handle)).Delete()
}

//export mimi_error
func mimi_error(handle unsafe.Pointer) C.int32_t {
	box := boxFromHandle(handle)
	if box == nil {
		return 0
	}
	return C.int32_t(box.sess.Error())
}

//export mimi_strerror
func mimi_strerror(errorno C.int32_t) *C.char {
	return C.CString(Strerror(int(errorno)))
}

//export mimi_version
func mimi_version() *C.char {
	return C.CString(Version)
}

func boxFromHandle(handle unsafe.Pointer) *handleBox {
	if handle == nil {
		return nil
	}
	h := *(*cgo.Handle)(handle)
	v, ok := h.Value().(*handleBox)
	if !ok {
		return nil
	}
	return v
}
