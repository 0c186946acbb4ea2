package packet

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestCanonStartSessionExactBytes(t *testing.T) {
	p := CanonStartSession()
	want := []byte{0x43, 0x0F, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00}
	if !bytes.Equal(p[0:8], want) {
		t.Fatalf("bytes 0-7 = % X, want % X", p[0:8], want)
	}
	for i := 8; i < Size; i++ {
		if p[i] != 0 {
			t.Fatalf("byte %d = 0x%02X, want zero", i, p[i])
		}
	}
}

func TestCanonBatteryDecodeBothDirections(t *testing.T) {
	got := ReverseBits6(0b110100)
	if got != 0b001011 {
		t.Fatalf("ReverseBits6(0b110100) = %06b, want 001011", got)
	}
	back := ReverseBits6(got)
	if back != 0b110100 {
		t.Fatalf("ReverseBits6 is not its own inverse: got %06b", back)
	}
}

func TestReverseBits6Identity(t *testing.T) {
	for v := 0; v < 64; v++ {
		got := ReverseBits6(ReverseBits6(uint8(v)))
		if got != uint8(v) {
			t.Errorf("double reverse of %d = %d, want %d", v, got, v)
		}
	}
}

func TestCanonPrintReadyFieldsForAllSizes(t *testing.T) {
	sizes := []uint32{0, 1, 65535, 1 << 20, 0xFFFFFFFF}
	for _, s := range sizes {
		p := CanonPrintReady(s, CanonModeNormal)
		got := binary.BigEndian.Uint32(p[8:12])
		if got != s {
			t.Errorf("size %d: decoded %d", s, got)
		}
		if p[12] != 1 {
			t.Errorf("size %d: byte12 = %d, want 1", s, p[12])
		}
		if p[13] != CanonModeNormal {
			t.Errorf("size %d: byte13 = %d, want %d", s, p[13], CanonModeNormal)
		}
	}
}

func TestCanonResponseRoundTrip(t *testing.T) {
	var buf [Size]byte
	binary.BigEndian.PutUint16(buf[0:2], CanonMagic)
	binary.BigEndian.PutUint16(buf[5:7], CanonCmdGetStatus)
	buf[7] = 0x00
	buf[8] = 0x12
	buf[9] = 0x34

	resp, err := ParseCanonResponse(buf[:])
	if err != nil {
		t.Fatalf("ParseCanonResponse: %v", err)
	}
	if resp.Command != CanonCmdGetStatus {
		t.Fatalf("Command = 0x%04X, want 0x%04X", resp.Command, CanonCmdGetStatus)
	}
	if resp.ErrorCode != 0 {
		t.Fatalf("ErrorCode = %d, want 0", resp.ErrorCode)
	}
	if resp.Payload[0] != 0x12 || resp.Payload[1] != 0x34 {
		t.Fatalf("Payload[0:2] = %x %x, want 12 34", resp.Payload[0], resp.Payload[1])
	}
}

func TestCanonResponseBadMagic(t *testing.T) {
	buf := make([]byte, Size)
	if _, err := ParseCanonResponse(buf); err == nil {
		t.Fatalf("expected error for zero magic")
	}
}

func TestParseStatusPayloadQueueFlagsAndUSB(t *testing.T) {
	var payload [26]byte
	payload[0] = 0x00
	payload[1] = 0x80 | 0b110100 // USB bit set + raw battery bits
	payload[4] = 0x00
	payload[5] = 0x01 | 0x02 // cover open + no paper

	fields := ParseStatusPayload(payload)
	if !fields.USBConnected {
		t.Fatalf("expected USBConnected true")
	}
	if fields.BatteryPercent != 11 {
		t.Fatalf("BatteryPercent = %d, want 11", fields.BatteryPercent)
	}
	if fields.QueueFlags&0x01 == 0 || fields.QueueFlags&0x02 == 0 {
		t.Fatalf("expected both cover-open and no-paper bits set, got 0x%04X", fields.QueueFlags)
	}
}

func TestParseStartSessionPayload(t *testing.T) {
	var payload [26]byte
	payload[1] = 0x00
	payload[2] = 0b110100
	binary.BigEndian.PutUint16(payload[3:5], 990)

	fields := ParseStartSessionPayload(payload)
	if fields.BatteryPercent != 11 {
		t.Fatalf("BatteryPercent = %d, want 11", fields.BatteryPercent)
	}
	if fields.MTU != 990 {
		t.Fatalf("MTU = %d, want 990", fields.MTU)
	}
}
