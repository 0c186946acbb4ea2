//go:build linux

package transport

import (
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"zinkdriver/zerr"
)

// Linux doesn't expose Bluetooth socket family/protocol constants in
// golang.org/x/sys/unix, the way Daedaluz-goserial hand-defines termios
// ioctl numbers that aren't in the stdlib syscall package either. These
// come from <linux/bluetooth.h> and <linux/rfcomm.h>.
const (
	afBluetooth    = 31
	btProtoRFCOMM  = 3
	sockaddrRCSize = 10 // sizeof(struct sockaddr_rc)
)

// sockaddrRC mirrors Linux's struct sockaddr_rc { sa_family_t rc_family;
// bdaddr_t rc_bdaddr; uint8_t rc_channel; }, laid out manually the way
// Daedaluz-goserial's Termios/Termios2 structs mirror their kernel
// counterparts field-for-field.
type sockaddrRC struct {
	family  uint16
	bdaddr  [6]byte
	channel uint8
	_       [1]byte // kernel struct is padded to 10 bytes
}

// rfcommDialer opens RFCOMM sockets via raw AF_BLUETOOTH syscalls.
type rfcommDialer struct {
	log logrus.FieldLogger
}

// NewDialer returns the platform's real Dialer. On Linux this speaks
// AF_BLUETOOTH/BTPROTO_RFCOMM directly; other platforms build a stub that
// always fails (see rfcomm_other.go).
func NewDialer(log logrus.FieldLogger) Dialer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &rfcommDialer{log: log}
}

func parseAddress(addr Address) ([6]byte, error) {
	var out [6]byte
	var octets [6]int
	n, err := fmt.Sscanf(string(addr), "%x:%x:%x:%x:%x:%x",
		&octets[0], &octets[1], &octets[2], &octets[3], &octets[4], &octets[5])
	if err != nil || n != 6 {
		return out, fmt.Errorf("transport: malformed bluetooth address %q", addr)
	}
	// bdaddr_t is stored little-endian (reversed octet order) on the wire.
	for i := 0; i < 6; i++ {
		out[5-i] = byte(octets[i])
	}
	return out, nil
}

func (d *rfcommDialer) Dial(addr Address, channel int) (Transport, error) {
	bdaddr, err := parseAddress(addr)
	if err != nil {
		return nil, zerr.Wrap(zerr.KindInvalidArgument, "dial", err)
	}

	fd, err := unix.Socket(afBluetooth, unix.SOCK_STREAM, btProtoRFCOMM)
	if err != nil {
		return nil, zerr.Wrap(zerr.KindTransportIo, "open rfcomm socket", err)
	}

	sa := sockaddrRC{family: afBluetooth, bdaddr: bdaddr, channel: uint8(channel)}

	done := make(chan error, 1)
	go func() {
		done <- connectRaw(fd, &sa)
	}()

	select {
	case err := <-done:
		if err != nil {
			unix.Close(fd)
			if err == unix.EHOSTDOWN || err == unix.EHOSTUNREACH || err == unix.ECONNREFUSED {
				return nil, zerr.Wrap(zerr.KindTransportUnreachable, "connect", err)
			}
			return nil, zerr.Wrap(zerr.KindTransportIo, "connect", err)
		}
	case <-time.After(DialTimeout):
		unix.Close(fd)
		return nil, zerr.New(zerr.KindTransportUnreachable, "rfcomm connect timed out")
	}

	d.log.WithFields(logrus.Fields{"address": addr, "channel": channel}).Debug("rfcomm connected")
	return &rfcommTransport{fd: fd, log: d.log.WithField("address", addr)}, nil
}

func connectRaw(fd int, sa *sockaddrRC) error {
	_, _, errno := unix.Syscall(unix.SYS_CONNECT, uintptr(fd), uintptr(unsafe.Pointer(sa)), uintptr(sockaddrRCSize))
	if errno != 0 {
		return errno
	}
	return nil
}

// rfcommTransport is a Transport backed by a connected RFCOMM file
// descriptor.
type rfcommTransport struct {
	fd     int
	closed atomic.Bool
	log    logrus.FieldLogger
}

func (t *rfcommTransport) Write(b []byte) error {
	if t.closed.Load() {
		return zerr.New(zerr.KindTransportClosed, "write on closed transport")
	}
	written := 0
	for written < len(b) {
		n, err := unix.Write(t.fd, b[written:])
		if err != nil {
			return zerr.Wrap(zerr.KindTransportIo, "write", err)
		}
		written += n
	}
	return nil
}

func (t *rfcommTransport) ReadExact(n int, timeout time.Duration) ([]byte, error) {
	if t.closed.Load() {
		return nil, zerr.New(zerr.KindTransportClosed, "read on closed transport")
	}
	buf := make([]byte, n)
	read := 0
	deadline := time.Now().Add(timeout)

	for read < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, zerr.New(zerr.KindTransportTimeout, fmt.Sprintf("read %d/%d bytes before timeout", read, n))
		}
		if err := setReadTimeout(t.fd, remaining); err != nil {
			return nil, zerr.Wrap(zerr.KindTransportIo, "set read timeout", err)
		}
		got, err := unix.Read(t.fd, buf[read:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				continue
			}
			return nil, zerr.Wrap(zerr.KindTransportIo, "read", err)
		}
		if got == 0 {
			return nil, zerr.New(zerr.KindTransportClosed, "peer closed connection")
		}
		read += got
	}
	return buf, nil
}

func setReadTimeout(fd int, d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv)
}

func (t *rfcommTransport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	t.log.Debug("rfcomm closed")
	return unix.Close(t.fd)
}

func (t *rfcommTransport) IsConnected() bool {
	return !t.closed.Load()
}
