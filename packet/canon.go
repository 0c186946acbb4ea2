package packet

import (
	"encoding/binary"
	"fmt"
)

// Canon command codes (bytes 5-6, big-endian).
const (
	CanonCmdStartSession      uint16 = 0x0000
	CanonCmdGetStatus         uint16 = 0x0101
	CanonCmdSettingAccessory  uint16 = 0x0103
	CanonCmdPrintReady        uint16 = 0x0301
	CanonCmdReboot            uint16 = 0xFFFF
)

// Canon modifier flag (byte 7).
const (
	CanonModRead  byte = 0
	CanonModWrite byte = 1
)

// Canon PrintReady mode byte (§9 open question: implementations should use
// ModeNormal).
const (
	CanonModeNormal    byte = 1
	CanonModeAlternate byte = 2
)

func newCanonPacket(cmd uint16, flags1 int16, flags2 int8, mod byte) [Size]byte {
	var p [Size]byte
	binary.BigEndian.PutUint16(p[0:2], CanonMagic)
	binary.BigEndian.PutUint16(p[2:4], uint16(flags1))
	p[4] = byte(flags2)
	binary.BigEndian.PutUint16(p[5:7], cmd)
	p[7] = mod
	return p
}

// CanonStartSession builds the session-init request: flags1=-1, flags2=-1,
// mod=0, all-zero payload.
func CanonStartSession() [Size]byte {
	return newCanonPacket(CanonCmdStartSession, -1, -1, CanonModRead)
}

// CanonGetStatus builds the GetStatus request.
func CanonGetStatus() [Size]byte {
	return newCanonPacket(CanonCmdGetStatus, 1, 32, CanonModRead)
}

// CanonSettingAccessory builds a SettingAccessory request, read or write.
func CanonSettingAccessory(write bool) [Size]byte {
	mod := CanonModRead
	if write {
		mod = CanonModWrite
	}
	return newCanonPacket(CanonCmdSettingAccessory, 1, 32, mod)
}

// CanonPrintReady builds the PrintReady request. length is the JPEG byte
// length; mode should be CanonModeNormal per §9.
func CanonPrintReady(length uint32, mode byte) [Size]byte {
	p := newCanonPacket(CanonCmdPrintReady, 1, 32, CanonModWrite)
	binary.BigEndian.PutUint32(p[8:12], length)
	p[12] = 1
	p[13] = mode
	return p
}

// CanonReboot builds the Reboot request.
func CanonReboot() [Size]byte {
	p := newCanonPacket(CanonCmdReboot, 1, 32, CanonModWrite)
	p[8] = 1
	return p
}

// CanonResponse is the parsed view of a 34-byte Canon response.
type CanonResponse struct {
	Command   uint16
	ErrorCode byte
	Payload   [26]byte // bytes 8-33
}

// ParseCanonResponse validates the magic header and extracts the echoed
// command, error code, and payload. It does not itself check the echo
// against an expected command; callers that know what they sent should do
// that and treat a mismatch as ProtocolMismatch (§4.5 "ACK discipline").
func ParseCanonResponse(buf []byte) (*CanonResponse, error) {
	if len(buf) != Size {
		return nil, fmt.Errorf("packet: canon response length %d, want %d", len(buf), Size)
	}
	if binary.BigEndian.Uint16(buf[0:2]) != CanonMagic {
		return nil, fmt.Errorf("packet: canon response bad magic %x", buf[0:2])
	}
	resp := &CanonResponse{
		Command:   binary.BigEndian.Uint16(buf[5:7]),
		ErrorCode: buf[7],
	}
	copy(resp.Payload[:], buf[8:34])
	return resp, nil
}

// BatteryPercent decodes the Canon 6-bit-reversed battery raw value
// (§4.2, §8). raw is the full word; only its low 6 bits are significant.
func BatteryPercent(raw uint16) int {
	return int(ReverseBits6(uint8(raw & 0x3F)))
}

// StatusFields are the fields ParseStatusPayload extracts from a GetStatus
// response payload (§4.2).
type StatusFields struct {
	BatteryPercent int
	USBConnected   bool
	QueueFlags     uint16
}

// ParseStatusPayload extracts battery/USB/queue-flag fields from a
// GetStatus response's payload (bytes 8-33 of the full packet, i.e.
// CanonResponse.Payload).
func ParseStatusPayload(payload [26]byte) StatusFields {
	raw := uint16(payload[0])<<8 | uint16(payload[1])
	queue := uint16(payload[4])<<8 | uint16(payload[5])
	return StatusFields{
		BatteryPercent: BatteryPercent(raw),
		USBConnected:   raw&0x80 != 0,
		QueueFlags:     queue,
	}
}

// StartSessionFields are the fields decoded from a StartSession response
// payload: battery (via bit-reversal, bytes 9-10 relative to packet start,
// i.e. payload[1:3]) and MTU (bytes 11-12, i.e. payload[3:5]).
type StartSessionFields struct {
	BatteryPercent int
	MTU            uint16
}

// ParseStartSessionPayload extracts battery and MTU from a StartSession
// response payload.
func ParseStartSessionPayload(payload [26]byte) StartSessionFields {
	raw := uint16(payload[1])<<8 | uint16(payload[2])
	mtu := binary.BigEndian.Uint16(payload[3:5])
	return StartSessionFields{
		BatteryPercent: BatteryPercent(raw),
		MTU:            mtu,
	}
}
