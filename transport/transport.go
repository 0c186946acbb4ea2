// Package transport provides the byte-stream contract (§4.1, §6) that the
// protocol sessions consume. It is agnostic to the underlying stack: a
// Linux BlueZ RFCOMM socket, a mocked pipe for tests, or any other ordered
// byte channel.
package transport

import (
	"time"
)

// Address is a 48-bit Bluetooth device address, canonically six
// colon-separated hex octets (e.g. "A4:62:DF:A9:72:D4").
type Address string

// Transport is an exclusively-owned, ordered byte stream to a paired
// Bluetooth Classic SPP device. Implementations must aggregate partial
// reads/writes internally; callers never see a short read/write that
// wasn't a timeout or hard failure.
type Transport interface {
	// Write writes all of b or returns a *zerr.Error with KindTransportIo
	// (KindTransportClosed once the transport has been closed).
	Write(b []byte) error

	// ReadExact returns exactly n bytes, or a *zerr.Error with
	// KindTransportTimeout if all n bytes have not arrived within timeout.
	ReadExact(n int, timeout time.Duration) ([]byte, error)

	// Close is idempotent; safe to call when already closed.
	Close() error

	// IsConnected is a best-effort liveness indicator.
	IsConnected() bool
}

// Dialer opens a Transport to a paired device on the given RFCOMM channel.
type Dialer interface {
	Dial(addr Address, channel int) (Transport, error)
}

// DialTimeout is the budget §4.1 gives a Dialer before it must fail with
// KindTransportUnreachable.
const DialTimeout = 10 * time.Second
