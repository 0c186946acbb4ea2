package zerr

import "fmt"

// kodakCodes maps the Kodak packet byte-8 error code (§4.2, §7) to a Kind.
// 0x00 is success and is never looked up here.
var kodakCodes = map[byte]Kind{
	0x01: KindPaperJam,
	0x02: KindNoPaper,
	0x03: KindCoverOpen,
	0x04: KindPaperMismatch,
	0x05: KindBatteryTooLow,
	0x06: KindOverheating,
	0x07: KindCooling,
	0x08: KindMisfeed,
	0x09: KindBusy,
}

// FromKodakCode maps a nonzero Kodak response error byte to an *Error.
// Callers must not invoke this for code == 0 (success).
func FromKodakCode(code byte) *Error {
	if kind, ok := kodakCodes[code]; ok {
		return New(kind, fmt.Sprintf("kodak error code 0x%02X", code))
	}
	return New(KindUnknown, fmt.Sprintf("unrecognized kodak error code 0x%02X", code))
}

// Canon queue flag bits (§4.2 "Queue flags").
const (
	CanonQueueCoverOpen      uint16 = 0x01
	CanonQueueNoPaper        uint16 = 0x02
	CanonQueueWrongSmartSheet uint16 = 0x10
)

// FromCanonCode maps a nonzero Canon response error byte (byte 7) to an
// *Error. Canon's mechanical states (cover/paper/smart-sheet) are instead
// signaled through the queue-flag word and are mapped by the caller via
// FromCanonQueueFlags, since they are independent of this byte.
func FromCanonCode(code byte) *Error {
	switch code {
	case 0x00:
		return nil
	default:
		return New(KindUnknown, fmt.Sprintf("canon error code 0x%02X", code))
	}
}

// FromCanonQueueFlags inspects the Canon GetStatus queue-flag word and
// returns the first applicable mechanical-state error, or nil if none of
// the known bits are set.
func FromCanonQueueFlags(flags uint16) *Error {
	switch {
	case flags&CanonQueueCoverOpen != 0:
		return New(KindCoverOpen, "canon cover open")
	case flags&CanonQueueNoPaper != 0:
		return New(KindNoPaper, "canon no paper")
	case flags&CanonQueueWrongSmartSheet != 0:
		return New(KindWrongSmartSheet, "canon wrong smart sheet")
	default:
		return nil
	}
}
