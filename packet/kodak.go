package packet

import "fmt"

// Kodak command codes (byte 6) and sub-types (byte 7), per §4.2's command
// table.
const (
	kodakCmdAccessoryInfo byte = 0x01
	kodakCmdBatteryLevel  byte = 0x0E
	kodakCmdPageType      byte = 0x0D
	kodakCmdPrintCount    byte = 0x00
	kodakCmdAutoPowerOff  byte = 0x10
	kodakCmdPrintReady    byte = 0x00
	kodakCmdSendAck       byte = 0x01
)

const (
	kodakSubZero byte = 0x00
	kodakSubOne  byte = 0x01
)

// Device family flag (byte 5).
const (
	KodakFamilyStandard byte = 0x00
	KodakFamilySlim     byte = 0x02
)

func kodakFamilyByte(isSlim bool) byte {
	if isSlim {
		return KodakFamilySlim
	}
	return KodakFamilyStandard
}

func newKodakPacket() [Size]byte {
	var p [Size]byte
	copy(p[0:4], KodakMagic[:])
	return p
}

// KodakGetAccessoryInfo builds the GetAccessoryInfo request (b5=family,
// b6=0x01, b7=0x00).
func KodakGetAccessoryInfo(isSlim bool) [Size]byte {
	p := newKodakPacket()
	p[5] = kodakFamilyByte(isSlim)
	p[6] = kodakCmdAccessoryInfo
	p[7] = kodakSubZero
	return p
}

// KodakGetBatteryLevel builds the GetBatteryLevel request. Despite the
// name, the response's byte 8 is charging status, not battery percent
// (§4.2, §9).
func KodakGetBatteryLevel() [Size]byte {
	p := newKodakPacket()
	p[6] = kodakCmdBatteryLevel
	p[7] = kodakSubZero
	return p
}

// KodakGetPageType builds the GetPageType request.
func KodakGetPageType() [Size]byte {
	p := newKodakPacket()
	p[6] = kodakCmdPageType
	p[7] = kodakSubZero
	return p
}

// KodakGetPrintCount builds the GetPrintCount request.
func KodakGetPrintCount() [Size]byte {
	p := newKodakPacket()
	p[6] = kodakCmdPrintCount
	p[7] = kodakSubOne
	return p
}

// KodakGetAutoPowerOff builds the GetAutoPowerOff request.
func KodakGetAutoPowerOff() [Size]byte {
	p := newKodakPacket()
	p[6] = kodakCmdAutoPowerOff
	p[7] = kodakSubZero
	return p
}

// KodakPrintReady builds the PrintReady request. size is the JPEG byte
// length (must fit in 24 bits); copies is the print-copy count.
func KodakPrintReady(size uint32, copies uint8) ([Size]byte, error) {
	if size > 0xFFFFFF {
		return [Size]byte{}, fmt.Errorf("packet: kodak image size %d exceeds 24-bit field", size)
	}
	p := newKodakPacket()
	p[6] = kodakCmdPrintReady
	p[7] = kodakSubZero
	p[8] = byte(size >> 16)
	p[9] = byte(size >> 8)
	p[10] = byte(size)
	p[11] = copies
	return p, nil
}

// KodakStartOfSendAck builds the StartOfSendAck packet. Retained for
// protocol completeness (§9); never required on the happy-path print flow.
func KodakStartOfSendAck() [Size]byte {
	p := newKodakPacket()
	p[6] = kodakCmdSendAck
	p[7] = kodakSubZero
	p[8] = 0x02
	return p
}

// KodakEndOfReceivedAck builds the EndOfReceivedAck packet. Retained for
// protocol completeness (§9).
func KodakEndOfReceivedAck() [Size]byte {
	p := newKodakPacket()
	p[6] = kodakCmdSendAck
	p[7] = kodakSubOne
	p[8] = 0x02
	return p
}

// KodakErrorMessageAck builds the ErrorMessageAck packet for error code ec.
// Retained for protocol completeness (§9).
func KodakErrorMessageAck(ec byte) [Size]byte {
	p := newKodakPacket()
	p[6] = kodakCmdSendAck
	p[7] = kodakSubZero
	p[8] = ec
	return p
}

// KodakResponse is the parsed, family-agnostic-within-Kodak view of a
// 34-byte response buffer.
type KodakResponse struct {
	Command      byte
	SubType      byte
	ErrorCode    byte // byte 8
	BatteryPct   int  // valid only for GetAccessoryInfo responses (byte 12)
	MAC          string
	ChargingFlag int    // valid only for GetBatteryLevel responses (byte 8)
	PrintCount   uint16 // valid only for GetPrintCount responses (bytes 8-9)
	AutoPowerOff int    // minutes, valid only for GetAutoPowerOff responses (byte 8)
}

// ParseKodakResponse validates the magic header and extracts every field
// this module cares about. buf must be exactly Size bytes.
func ParseKodakResponse(buf []byte) (*KodakResponse, error) {
	if len(buf) != Size {
		return nil, fmt.Errorf("packet: kodak response length %d, want %d", len(buf), Size)
	}
	for i := 0; i < 4; i++ {
		if buf[i] != KodakMagic[i] {
			return nil, fmt.Errorf("packet: kodak response bad magic %x", buf[0:4])
		}
	}

	resp := &KodakResponse{
		Command:      buf[6],
		SubType:      buf[7],
		ErrorCode:    buf[8],
		ChargingFlag: int(buf[8]),
	}

	if buf[6] == kodakCmdAccessoryInfo {
		resp.BatteryPct = int(buf[12])
		resp.MAC = formatMAC(buf[15:21])
	}
	if buf[6] == kodakCmdPrintCount && buf[7] == kodakSubOne {
		resp.PrintCount = uint16(buf[8])<<8 | uint16(buf[9])
	}
	if buf[6] == kodakCmdAutoPowerOff {
		resp.AutoPowerOff = int(buf[8])
	}

	return resp, nil
}

func formatMAC(b []byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}
