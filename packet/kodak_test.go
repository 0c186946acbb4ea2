package packet

import (
	"bytes"
	"testing"
)

func TestKodakPrintReadyExactBytes(t *testing.T) {
	p, err := KodakPrintReady(50000, 1)
	if err != nil {
		t.Fatalf("KodakPrintReady: %v", err)
	}
	want := []byte{0x1B, 0x2A, 0x43, 0x41, 0x00, 0x00, 0x00, 0x00, 0x00, 0xC3, 0x50, 0x01, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(p[0:16], want) {
		t.Fatalf("bytes 0-15 = % X, want % X", p[0:16], want)
	}
	for i := 16; i < Size; i++ {
		if p[i] != 0 {
			t.Fatalf("byte %d = 0x%02X, want zero", i, p[i])
		}
	}
}

func TestKodakAccessoryInfoParse(t *testing.T) {
	buf := make([]byte, Size)
	copy(buf[0:4], KodakMagic[:])
	buf[6] = kodakCmdAccessoryInfo
	buf[8] = 0
	buf[12] = 87
	copy(buf[15:21], []byte{0xA4, 0x62, 0xDF, 0xA9, 0x72, 0xD4})

	resp, err := ParseKodakResponse(buf)
	if err != nil {
		t.Fatalf("ParseKodakResponse: %v", err)
	}
	if resp.ErrorCode != 0 {
		t.Fatalf("ErrorCode = %d, want 0", resp.ErrorCode)
	}
	if resp.BatteryPct != 87 {
		t.Fatalf("BatteryPct = %d, want 87", resp.BatteryPct)
	}
	if resp.MAC != "A4:62:DF:A9:72:D4" {
		t.Fatalf("MAC = %q, want A4:62:DF:A9:72:D4", resp.MAC)
	}
}

func TestKodakResponseBadMagic(t *testing.T) {
	buf := make([]byte, Size)
	buf[0] = 0xFF
	if _, err := ParseKodakResponse(buf); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestKodakResponseWrongLength(t *testing.T) {
	if _, err := ParseKodakResponse(make([]byte, Size-1)); err == nil {
		t.Fatalf("expected error for short buffer")
	}
}

func TestKodakPacketsAreFixedSizeAndZeroed(t *testing.T) {
	builders := [][Size]byte{
		KodakGetAccessoryInfo(false),
		KodakGetAccessoryInfo(true),
		KodakGetBatteryLevel(),
		KodakGetPageType(),
		KodakGetPrintCount(),
		KodakGetAutoPowerOff(),
		KodakStartOfSendAck(),
		KodakEndOfReceivedAck(),
		KodakErrorMessageAck(0x05),
	}
	for _, p := range builders {
		if len(p) != Size {
			t.Fatalf("packet length %d, want %d", len(p), Size)
		}
		if !bytes.Equal(p[0:4], KodakMagic[:]) {
			t.Fatalf("magic missing: % X", p[0:4])
		}
	}
}

func TestKodakPrintReadySizeOverflow(t *testing.T) {
	if _, err := KodakPrintReady(1<<24, 1); err == nil {
		t.Fatalf("expected error for size exceeding 24 bits")
	}
}

func TestKodakPrintReadyFieldsForAllSizes(t *testing.T) {
	sizes := []uint32{0, 1, 255, 256, 65535, 65536, 0xFFFFFF}
	for _, s := range sizes {
		p, err := KodakPrintReady(s, 3)
		if err != nil {
			t.Fatalf("KodakPrintReady(%d): %v", s, err)
		}
		got := uint32(p[8])<<16 | uint32(p[9])<<8 | uint32(p[10])
		if got != s {
			t.Errorf("size %d: decoded %d", s, got)
		}
		if p[11] != 3 {
			t.Errorf("size %d: copies byte = %d, want 3", s, p[11])
		}
	}
}
