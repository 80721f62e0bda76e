package worker

import (
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fairydevices/go-mimiio/mlog"
	"github.com/fairydevices/go-mimiio/wsconn"
)

func newRxTestConn(t *testing.T, handle func(*websocket.Conn)) *wsconn.Conn {
	t.Helper()
	return newTxTestConn(t, handle)
}

// TestRxPingPong is S5: the server sends 3 pings; the client must answer
// each with a pong and never invoke the user sink for them, staying active
// throughout.
func TestRxPingPong(t *testing.T) {
	var pongsSeen int
	var mu sync.Mutex
	pongDone := make(chan struct{})

	conn := newRxTestConn(t, func(ws *websocket.Conn) {
		ws.SetPongHandler(func(string) error {
			mu.Lock()
			pongsSeen++
			n := pongsSeen
			mu.Unlock()
			if n == 3 {
				close(pongDone)
			}
			return nil
		})
		for i := 0; i < 3; i++ {
			ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
			time.Sleep(20 * time.Millisecond)
		}
		select {
		case <-pongDone:
		case <-time.After(2 * time.Second):
		}
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(1000, ""))
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	})

	sinkInvoked := false
	rx := NewRx(conn, func(payload []byte, isText bool) int32 {
		sinkInvoked = true
		return 0
	}, mlog.Default())

	done := make(chan struct{})
	go func() { rx.Run(); close(done) }()

	select {
	case <-pongDone:
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw 3 pongs")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rx worker did not exit after normal close")
	}

	if sinkInvoked {
		t.Fatal("expected no sink invocation for ping/pong traffic")
	}
	if rx.Errorno() != 0 {
		t.Fatalf("Errorno() = %d, want 0 after a normal close", rx.Errorno())
	}
}

func TestRxCloseWithoutStatusIs904(t *testing.T) {
	conn := newRxTestConn(t, func(ws *websocket.Conn) {
		ws.WriteControl(websocket.CloseMessage, nil, time.Now().Add(time.Second))
	})

	rx := NewRx(conn, func([]byte, bool) int32 { return 0 }, mlog.Default())
	done := make(chan struct{})
	go func() { rx.Run(); close(done) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rx worker did not exit")
	}
	if rx.Errorno() != 904 {
		t.Fatalf("Errorno() = %d, want 904", rx.Errorno())
	}
}

func TestRxEmptyTextFrameIs906(t *testing.T) {
	conn := newRxTestConn(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.TextMessage, nil)
	})

	rx := NewRx(conn, func([]byte, bool) int32 { return 0 }, mlog.Default())
	done := make(chan struct{})
	go func() { rx.Run(); close(done) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rx worker did not exit")
	}
	if rx.Errorno() != 906 {
		t.Fatalf("Errorno() = %d, want 906", rx.Errorno())
	}
}

func TestRxEmptyBinaryFrameIs907(t *testing.T) {
	conn := newRxTestConn(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.BinaryMessage, nil)
	})

	rx := NewRx(conn, func([]byte, bool) int32 { return 0 }, mlog.Default())
	done := make(chan struct{})
	go func() { rx.Run(); close(done) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rx worker did not exit")
	}
	if rx.Errorno() != 907 {
		t.Fatalf("Errorno() = %d, want 907", rx.Errorno())
	}
}

func TestRxPeerGoneIs791(t *testing.T) {
	conn := newRxTestConn(t, func(ws *websocket.Conn) {
		ws.NetConn().Close()
	})

	rx := NewRx(conn, func([]byte, bool) int32 { return 0 }, mlog.Default())
	done := make(chan struct{})
	go func() { rx.Run(); close(done) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rx worker did not exit")
	}
	if rx.Errorno() != 791 {
		t.Fatalf("Errorno() = %d, want 791", rx.Errorno())
	}
}

func TestRxFramesRecvCounts(t *testing.T) {
	conn := newRxTestConn(t, func(ws *websocket.Conn) {
		ws.WriteMessage(websocket.TextMessage, []byte("hello"))
		ws.WriteMessage(websocket.BinaryMessage, []byte{1, 2, 3})
		ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(1000, ""))
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	})

	rx := NewRx(conn, func([]byte, bool) int32 { return 0 }, mlog.Default())
	done := make(chan struct{})
	go func() { rx.Run(); close(done) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("rx worker did not exit")
	}
	if rx.FramesRecv() != 2 {
		t.Fatalf("FramesRecv() = %d, want 2", rx.FramesRecv())
	}
}
