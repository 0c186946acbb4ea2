//go:build !linux

package transport

import (
	"github.com/sirupsen/logrus"

	"zinkdriver/zerr"
)

// NewDialer on non-Linux platforms returns a Dialer that always fails:
// this module's one real transport backend speaks AF_BLUETOOTH directly
// against the Linux BlueZ stack (§6 "the native SPP socket is an opaque
// byte stream" — opaque per platform, and this platform has none wired).
func NewDialer(log logrus.FieldLogger) Dialer {
	return unsupportedDialer{}
}

type unsupportedDialer struct{}

func (unsupportedDialer) Dial(addr Address, channel int) (Transport, error) {
	return nil, zerr.New(zerr.KindTransportUnreachable, "rfcomm transport is only implemented on linux")
}
