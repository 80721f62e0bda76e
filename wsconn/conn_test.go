package wsconn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, handle func(*websocket.Conn)) (*httptest.Server, string, int) {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}))
	u, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	return srv, u.Hostname(), port
}

func dialTest(t *testing.T, host string, port int) *Conn {
	t.Helper()
	c, err := Dial(context.Background(), Config{
		Host:        host,
		Port:        port,
		ContentType: "audio/x-pcm;bit=16;rate=16000;channels=1",
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return c
}

func TestSendBinaryAndRecvFrameRoundTrip(t *testing.T) {
	srv, host, port := newTestServer(t, func(conn *websocket.Conn) {
		_, body, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.BinaryMessage, body)
	})
	defer srv.Close()

	c := dialTest(t, host, port)
	defer c.Close()

	payload := []byte{1, 2, 3, 4}
	if err := c.SendBinary(payload); err != nil {
		t.Fatalf("SendBinary: %v", err)
	}

	frame, err := c.RecvFrame()
	if err != nil {
		t.Fatalf("RecvFrame: %v", err)
	}
	if frame.Kind != KindBinary {
		t.Fatalf("Kind = %v, want KindBinary", frame.Kind)
	}
	if string(frame.Body) != string(payload) {
		t.Fatalf("Body = %v, want %v", frame.Body, payload)
	}
}

func TestRecvFrameClassifiesNormalClose(t *testing.T) {
	srv, host, port := newTestServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(1000, ""))
	})
	defer srv.Close()

	c := dialTest(t, host, port)
	defer c.Close()

	frame, err := c.RecvFrame()
	if err != nil {
		t.Fatalf("RecvFrame: %v", err)
	}
	if frame.Kind != KindClose || frame.Status != 1000 {
		t.Fatalf("got %+v, want Kind=KindClose Status=1000", frame)
	}
	if !c.IsClosed() {
		t.Fatal("expected connection to be marked closed after a close frame")
	}
}

func TestRecvFrameClassifiesNoStatusCloseAsZero(t *testing.T) {
	// A close control frame written with an empty payload is a bodyless
	// close frame, which the client library reports internally
	// as CloseNoStatusReceived (1005); RecvFrame must translate that back
	// to status 0 so the 904 rule fires downstream.
	srv, host, port := newTestServer(t, func(conn *websocket.Conn) {
		conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(time.Second))
	})
	defer srv.Close()

	c := dialTest(t, host, port)
	defer c.Close()

	frame, err := c.RecvFrame()
	if err != nil {
		t.Fatalf("RecvFrame: %v", err)
	}
	if frame.Kind != KindClose || frame.Status != 0 {
		t.Fatalf("got %+v, want Kind=KindClose Status=0", frame)
	}
}

func TestRecvFrameClassifiesPeerGoneOnAbruptDisconnect(t *testing.T) {
	srv, host, port := newTestServer(t, func(conn *websocket.Conn) {
		conn.NetConn().Close()
	})
	defer srv.Close()

	c := dialTest(t, host, port)
	defer c.Close()

	frame, err := c.RecvFrame()
	if err != nil {
		t.Fatalf("RecvFrame: %v", err)
	}
	if frame.Kind != KindPeerGone {
		t.Fatalf("Kind = %v, want KindPeerGone", frame.Kind)
	}
}

func TestSendTextAndSendBinaryFailAfterClose(t *testing.T) {
	srv, host, port := newTestServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(1000, ""))
	})
	defer srv.Close()

	c := dialTest(t, host, port)
	defer c.Close()

	if _, err := c.RecvFrame(); err != nil {
		t.Fatalf("RecvFrame: %v", err)
	}
	if err := c.SendBinary([]byte{1}); err == nil {
		t.Fatal("expected SendBinary to fail on a closed connection")
	}
	if err := c.SendText("x"); err == nil {
		t.Fatal("expected SendText to fail on a closed connection")
	}
}
