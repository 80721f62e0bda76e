package mimiio

import (
	"time"

	"github.com/fairydevices/go-mimiio/wsconn"
)

// Header is one extra request header sent during the opening handshake.
type Header = wsconn.HTTPHeader

// Config carries everything Open needs: connection target, audio format,
// and the two user callbacks. Headers must not include X-Mimi-Content-Type;
// the library appends it itself.
type Config struct {
	Host     string
	Port     int
	UseTLS   bool
	Format   AudioFormat
	Rate     int
	Channels int

	Headers []Header
	Token   string

	// LogLevel is one of the wire-protocol numeric levels (3/4/6/7/9); the
	// value from the first Open call in the process wins.
	LogLevel int

	Tx TxFunc
	Rx RxFunc

	CABundlePath   string
	ConnectTimeout time.Duration
	SendTimeout    time.Duration
	RecvTimeout    time.Duration
}
