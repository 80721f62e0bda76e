package wsconn

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// relaxedCipherSuites follows the original's OpenSSL cipher string
// "ALL:!ADH:!LOW:!EXP:!MD5:@STRENGTH": no anonymous Diffie-Hellman, no low
// or export-grade ciphers, no MD5 MACs, strongest-first. Go's tls package
// has no OpenSSL-string parser, so the nearest equivalent modern,
// non-anonymous, non-export AEAD suite list is enumerated explicitly.
var relaxedCipherSuites = []uint16{
	tls.TLS_AES_128_GCM_SHA256,
	tls.TLS_AES_256_GCM_SHA384,
	tls.TLS_CHACHA20_POLY1305_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
}

// Conn wraps a *websocket.Conn with the send-mutex, close-tracking, and
// frame-classification rules the mimi(R) wire protocol needs. It is safe
// for one writer goroutine (the transmit worker) and one reader goroutine
// (the receive worker) to use concurrently: recv-triggered pongs go through
// the same write mutex as payload sends, and the close-echo is written by
// gorilla's close handler via WriteControl, which gorilla permits
// concurrently with other writes.
type Conn struct {
	ws *websocket.Conn

	writeMu sync.Mutex
	closed  atomic.Bool

	sendTimeout time.Duration
	recvTimeout time.Duration
}

// Dial performs the RFC 6455 opening handshake as a client: GET /, HTTP/1.1,
// the caller's extra headers, a bearer Authorization header if cfg.Token is
// set, and X-Mimi-Content-Type appended last. Grounded on
// services/deepgram/stt.go's websocket.DefaultDialer.Dial(url, header)
// pattern, extended with TLS and proxy wiring from
// original_source/src/mimiioImpl.cpp's two constructors.
func Dial(ctx context.Context, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()

	scheme := "ws"
	if cfg.UseTLS {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Path: "/"}

	header := make(http.Header)
	for _, h := range cfg.Headers {
		header.Add(h.Key, h.Value)
	}
	if cfg.Token != "" {
		header.Set("Authorization", "Bearer "+cfg.Token)
	}
	if cfg.ContentType != "" {
		header.Set("X-Mimi-Content-Type", cfg.ContentType)
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: cfg.ConnectTimeout,
	}
	if cfg.UseTLS {
		tlsCfg := &tls.Config{
			CipherSuites: relaxedCipherSuites,
		}
		if cfg.CABundlePath != "" {
			pool, err := loadCABundle(cfg.CABundlePath)
			if err != nil {
				return nil, &DialError{Code: 601, Err: fmt.Errorf("tls context: %w", err)}
			}
			tlsCfg.RootCAs = pool
		}
		dialer.TLSClientConfig = tlsCfg
	}
	if proxyCfg, ok := proxyFromEnv(); ok {
		if proxyURL := proxyCfg.URL(cfg.Host); proxyURL != nil {
			dialer.Proxy = http.ProxyURL(proxyURL)
		}
	}

	ws, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, classifyDialError(err, resp)
	}

	c := &Conn{
		ws:          ws,
		sendTimeout: cfg.SendTimeout,
		recvTimeout: cfg.RecvTimeout,
	}
	// gorilla answers pings inline during ReadMessage and never surfaces
	// them as a received message; installing our own handler (identical to
	// the library default) keeps the pong-reply behavior explicit rather
	// than relying on an unstated default. KindPing therefore is not
	// produced by RecvFrame in practice — see worker.Rx's comment on why
	// its KindPing branch is still kept.
	ws.SetPingHandler(func(appData string) error {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		c.ws.SetWriteDeadline(time.Now().Add(c.sendTimeout))
		return c.ws.WriteMessage(websocket.PongMessage, nil)
	})
	return c, nil
}

// IsClosed reports whether a close frame has been sent or received on this
// connection. Once true, SendText/SendBinary/SendClose all fail.
func (c *Conn) IsClosed() bool { return c.closed.Load() }

// SendText sends a text frame. Used only by the transmit worker to send the
// single terminating {"command":"recog-break"} message.
func (c *Conn) SendText(s string) error {
	if c.closed.Load() {
		return fmt.Errorf("wsconn: connection already closed")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.sendTimeout))
	return wrapWSErr(c.ws.WriteMessage(websocket.TextMessage, []byte(s)))
}

// SendBinary sends one binary frame of encoded audio.
func (c *Conn) SendBinary(b []byte) error {
	if c.closed.Load() {
		return fmt.Errorf("wsconn: connection already closed")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.sendTimeout))
	return wrapWSErr(c.ws.WriteMessage(websocket.BinaryMessage, b))
}

// SendClose sends a close frame with the given status and marks the
// connection closed. The workers do not call it; the transmit worker's
// best-effort path on a tx-callback error sends recog-break via SendText.
func (c *Conn) SendClose(status uint16) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.closed.Store(true)
	msg := websocket.FormatCloseMessage(int(status), "")
	c.ws.SetWriteDeadline(time.Now().Add(c.sendTimeout))
	return wrapWSErr(c.ws.WriteMessage(websocket.CloseMessage, msg))
}

// RecvFrame blocks for the next frame and classifies it per the rules in
// original_source/src/mimiioImpl.cpp's receive_frame: a ping is answered
// with a pong inside ReadMessage and is not returned (KindPing is never
// produced here); a close frame's status is echoed back and marks the
// connection closed; a peer that disappears without a close frame yields
// KindPeerGone; anything else is passed through as text/binary.
func (c *Conn) RecvFrame() (Frame, error) {
	if c.closed.Load() {
		return Frame{}, fmt.Errorf("wsconn: connection already closed")
	}
	c.ws.SetReadDeadline(time.Now().Add(c.recvTimeout))
	kind, body, err := c.ws.ReadMessage()
	if err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			// gorilla reports an EOF with no close frame as a synthetic
			// CloseAbnormalClosure (1006), a code never sent on the wire.
			if ce.Code == websocket.CloseAbnormalClosure {
				return Frame{Kind: KindPeerGone}, nil
			}
			return c.handleCloseFrame(ce)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			// The peer vanished without a close frame at all: flags==0,
			// zero body, per original_source's UnexpectedNetworkDisconnection.
			return Frame{Kind: KindPeerGone}, nil
		}
		return Frame{}, wrapWSErr(err)
	}

	switch kind {
	case websocket.TextMessage:
		return Frame{Kind: KindText, Body: body}, nil
	case websocket.BinaryMessage:
		return Frame{Kind: KindBinary, Body: body}, nil
	default:
		return Frame{Kind: KindUnknown}, nil
	}
}

func (c *Conn) handleCloseFrame(ce *websocket.CloseError) (Frame, error) {
	// gorilla reports a bodyless close frame as CloseNoStatusReceived
	// (1005), its own synthetic stand-in for "no status was on the wire" —
	// it never reports Code: 0. Translate that back to status 0 so the
	// 904 rule in worker.Rx ("close received but no status set") actually
	// fires instead of misrecording it as a literal 1005.
	status := uint16(ce.Code)
	if ce.Code == websocket.CloseNoStatusReceived {
		status = 0
	}

	c.closed.Store(true)
	// gorilla's default close handler already echoes the close frame back
	// to the peer before returning this error from ReadMessage, so no
	// further write is needed here.

	return Frame{Kind: KindClose, Status: status}, nil
}

// Close tears down the underlying TCP/TLS connection immediately. Used by
// the session façade's close() to unblock a worker stuck in a blocking
// recv past its timeout, per the cooperative-cancellation rule in §5.
func (c *Conn) Close() error {
	c.closed.Store(true)
	return c.ws.Close()
}
