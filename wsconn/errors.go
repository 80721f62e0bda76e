package wsconn

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"github.com/gorilla/websocket"
)

// DialError wraps a handshake failure with the numeric code the session
// façade surfaces as mimi_open's out_errorno, per spec.md §7's 6xx/7xx/8xx
// ranges.
type DialError struct {
	Code int
	Err  error
}

func (e *DialError) Error() string { return fmt.Sprintf("%s: %v", strerrorLite(e.Code), e.Err) }
func (e *DialError) Unwrap() error { return e.Err }

func classifyDialError(err error, resp *http.Response) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
		return &DialError{Code: 701, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &DialError{Code: 703, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return &DialError{Code: 704, Err: err}
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return &DialError{Code: 603, Err: err}
	}
	var unknownAuth x509.UnknownAuthorityError
	if errors.As(err, &unknownAuth) {
		return &DialError{Code: 602, Err: err}
	}
	if errors.Is(err, websocket.ErrBadHandshake) {
		code := 801
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				code = 807
			default:
				code = 801
			}
		}
		return &DialError{Code: code, Err: err}
	}
	return &DialError{Code: 799, Err: err}
}

func wrapWSErr(err error) error {
	if err == nil {
		return nil
	}
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return &DialError{Code: ce.Code, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &DialError{Code: 830, Err: err}
	}
	return &DialError{Code: 790, Err: err}
}

func loadCABundle(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}

// strerrorLite avoids importing the mimiio package (which would create an
// import cycle) for the one-line message DialError.Error needs.
func strerrorLite(code int) string {
	switch {
	case code == 701:
		return "host not found"
	case code == 703:
		return "connect timeout"
	case code == 704:
		return "connection refused"
	case code == 602:
		return "invalid certificate"
	case code == 603:
		return "certificate validation error"
	case code >= 801 && code <= 811:
		return "WebSocket handshake error"
	default:
		return "network error"
	}
}
