package transport

import (
	"testing"
	"time"
)

func TestFakeWriteThenRead(t *testing.T) {
	f := NewFake()
	f.Enqueue([]byte{1, 2, 3, 4})

	got, err := f.ReadExact(4, time.Second)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if string(got) != string([]byte{1, 2, 3, 4}) {
		t.Fatalf("got %v", got)
	}
}

func TestFakeReadAcrossMultipleEnqueues(t *testing.T) {
	f := NewFake()
	f.Enqueue([]byte{1, 2})
	f.Enqueue([]byte{3, 4})

	got, err := f.ReadExact(4, time.Second)
	if err != nil {
		t.Fatalf("ReadExact: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d bytes, want 4", len(got))
	}
}

func TestFakeReadTimeout(t *testing.T) {
	f := NewFake()
	if _, err := f.ReadExact(1, 10*time.Millisecond); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestFakeCloseIdempotent(t *testing.T) {
	f := NewFake()
	if err := f.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if f.IsConnected() {
		t.Fatalf("expected IsConnected() false after close")
	}
}

func TestFakeWriteAfterCloseFails(t *testing.T) {
	f := NewFake()
	f.Close()
	if err := f.Write([]byte{1}); err == nil {
		t.Fatalf("expected error writing to closed transport")
	}
}

func TestFakeWritesRecordsChunks(t *testing.T) {
	f := NewFake()
	f.Write([]byte{1, 2})
	f.Write([]byte{3})
	writes := f.Writes()
	if len(writes) != 2 {
		t.Fatalf("got %d writes, want 2", len(writes))
	}
	total := 0
	for _, w := range writes {
		total += len(w)
	}
	if total != 3 {
		t.Fatalf("total bytes %d, want 3", total)
	}
}
