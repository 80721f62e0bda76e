package mimiio

import "fmt"

// ErrorCode is the stable, numeric error classification shared by every
// layer of go-mimiio: encoder, wsconn, worker, and the session façade. It
// satisfies the error interface directly so callers can treat it as an
// ordinary Go error or extract the numeric code with errors.As.
//
// Codes are grouped by decade: 1xx misc, 5xx encoder, 6xx TLS, 7xx
// networking, 8xx WebSocket protocol, 9xx this library's own policy
// errors, 1000-1015 RFC 6455 close codes. Values above 1000 that are not
// one of the RFC 6455 codes are passed through as peer-declared reasons.
// Negative values are reserved for user callback errors and are never
// produced by the library itself.
type ErrorCode int

const (
	ErrNone ErrorCode = 0

	ErrUnknown ErrorCode = 101

	ErrEncoderInit    ErrorCode = 501
	ErrEncoderProcess ErrorCode = 502

	ErrTLSContext          ErrorCode = 601
	ErrTLSInvalidCert      ErrorCode = 602
	ErrTLSCertValidation   ErrorCode = 603
	ErrTLSClosed           ErrorCode = 604
	ErrTLSServerValidation ErrorCode = 605

	ErrHostNotFound      ErrorCode = 701
	ErrConnectTimeout    ErrorCode = 703
	ErrConnectionRefused ErrorCode = 704
	ErrConnectionReset   ErrorCode = 705
	ErrNetwork           ErrorCode = 790
	ErrPeerGone          ErrorCode = 791
	ErrNetworkUndefined  ErrorCode = 799

	// ErrWebSocketBase is added to the underlying WebSocket handshake
	// error code (1-11) to produce the 801-811 range.
	ErrWebSocketBase    ErrorCode = 800
	ErrWebSocketTimeout ErrorCode = 830
	ErrUnknownFrame     ErrorCode = 890

	ErrTxCallbackMissing ErrorCode = 901
	ErrRxCallbackMissing ErrorCode = 902
	ErrBufferOverrun     ErrorCode = 903
	ErrCloseNoStatus     ErrorCode = 904
	ErrCouldNotStart     ErrorCode = 905
	ErrEmptyText         ErrorCode = 906
	ErrEmptyBinary       ErrorCode = 907
)

// RFC 6455 close status codes, reproduced here because strerror() must
// describe them and because the worker layer compares errorno against
// CloseNormal directly.
const (
	CloseNormal           ErrorCode = 1000
	CloseGoingAway        ErrorCode = 1001
	CloseProtocolError    ErrorCode = 1002
	CloseUnsupportedData  ErrorCode = 1003
	CloseReserved         ErrorCode = 1004
	CloseNoStatusReceived ErrorCode = 1005
	CloseAbnormal         ErrorCode = 1006
	CloseInvalidPayload   ErrorCode = 1007
	ClosePolicyViolation  ErrorCode = 1008
	CloseMessageTooBig    ErrorCode = 1009
	CloseMandatoryExt     ErrorCode = 1010
	CloseInternalErr      ErrorCode = 1011
	CloseServiceRestart   ErrorCode = 1012
	CloseTryAgainLater    ErrorCode = 1013
	CloseBadGateway       ErrorCode = 1014
	CloseTLSHandshake     ErrorCode = 1015
)

// Error implements the error interface so an ErrorCode can be returned and
// compared directly wherever Go idiom expects an error.
func (c ErrorCode) Error() string {
	return fmt.Sprintf("%s (%d)", Strerror(int(c)), int(c))
}

// Strerror maps a numeric error code to its stable, human-readable message.
// This is a direct port of the original library's mimiio::strerror, kept
// intentionally verbatim in wording so downstream tooling that greps log
// output for these strings keeps working.
func Strerror(errorno int) string {
	switch {
	case errorno < 0:
		return "user defined error."
	case errorno == 0:
		return "no error."
	case errorno == 101:
		return "unknown error."
	case errorno == 501:
		return "encoder initialization error."
	case errorno == 502:
		return "encoder processing error."
	case errorno == 601:
		return "SSL client context error."
	case errorno == 602:
		return "SSL invalid certificate error."
	case errorno == 603:
		return "SSL certificate validation error."
	case errorno == 604:
		return "SSL unexpectedly connection closed."
	case errorno == 605:
		return "SSL error, server certificate validation error."
	case errorno == 701:
		return "host not found."
	case errorno == 703:
		return "timed out for establishing connection."
	case errorno == 704:
		return "connection refused by remote host."
	case errorno == 705:
		return "connection reset by peer, which means exceeded simultaneous processing limit."
	case errorno == 790:
		return "network error."
	case errorno == 791:
		return "unexpected network disconnection."
	case errorno == 799:
		return "undefined network error."
	case errorno >= 801 && errorno <= 811:
		return websocketHandshakeMessage(errorno - 800)
	case errorno == 830:
		return "WebSocket receive frame timeout."
	case errorno == 890:
		return "WebSocket unknown flag received."
	case errorno == 901:
		return "tx_func is not set, could not start session."
	case errorno == 902:
		return "rx_func is not set, could not start session."
	case errorno == 903:
		return "audio buffer is over maximum payload size 262144."
	case errorno == 904:
		return "close frame received from remote host normally, but close status is not set."
	case errorno == 905:
		return "could not start API."
	case errorno == 906:
		return "received zero length text frame."
	case errorno == 907:
		return "received zero length binary frame."
	case errorno >= 1000 && errorno <= 1015:
		return rfc6455Message(errorno)
	default:
		return "Remote host could not process your request normally, remote host error code is shown."
	}
}

func websocketHandshakeMessage(code int) string {
	switch code {
	case 1:
		return "WebSocket handshake error: no handshake received."
	case 2:
		return "WebSocket handshake error: unsupported version."
	case 3:
		return "WebSocket handshake error: no Sec-WebSocket-Accept header."
	case 4:
		return "WebSocket handshake error: handshake no version."
	case 5:
		return "WebSocket handshake error: handshake no key."
	case 6:
		return "WebSocket handshake error: handshake accept mismatch."
	case 7:
		return "WebSocket handshake error: unauthorized."
	case 8:
		return "WebSocket handshake error: payload too big."
	case 9:
		return "WebSocket handshake error: incomplete frame."
	case 10:
		return "WebSocket error: frame too large."
	case 11:
		return "WebSocket error: multi-frame unsupported."
	default:
		return "WebSocket handshake error."
	}
}

func rfc6455Message(code int) string {
	switch ErrorCode(code) {
	case CloseNormal:
		return "close status: normal closure."
	case CloseGoingAway:
		return "close status: endpoint going away."
	case CloseProtocolError:
		return "close status: protocol error."
	case CloseUnsupportedData:
		return "close status: unsupported data."
	case CloseReserved:
		return "close status: reserved."
	case CloseNoStatusReceived:
		return "close status: no status received."
	case CloseAbnormal:
		return "close status: abnormal closure."
	case CloseInvalidPayload:
		return "close status: invalid frame payload data."
	case ClosePolicyViolation:
		return "close status: policy violation."
	case CloseMessageTooBig:
		return "close status: message too big."
	case CloseMandatoryExt:
		return "close status: mandatory extension missing."
	case CloseInternalErr:
		return "close status: internal server error."
	case CloseServiceRestart:
		return "close status: service restart."
	case CloseTryAgainLater:
		return "close status: try again later."
	case CloseBadGateway:
		return "close status: bad gateway."
	case CloseTLSHandshake:
		return "close status: TLS handshake failure."
	default:
		return "close status: unrecognized."
	}
}
