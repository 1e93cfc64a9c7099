package gpio

import (
	"errors"
	"testing"
)

func TestFakeReaderRead(t *testing.T) {
	f := NewFakeReader([]bool{true, false, true})

	want := []bool{true, false, true, true} // last sample repeats
	for i, w := range want {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	_, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]bool{true})
	f.ReadError = errors.New("simulated error")

	_, err := f.Read()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderCloseAndReset(t *testing.T) {
	f := NewFakeReader([]bool{true, false})

	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Read()
	f.Reset()
	if f.Closed {
		t.Error("Reset should clear Closed")
	}
	got, _ := f.Read()
	if got != true {
		t.Errorf("after reset: expected true, got %v", got)
	}
}

func TestFakeWriterRecordsWrites(t *testing.T) {
	w := NewFakeWriter()

	if _, ok := w.Last(); ok {
		t.Error("expected no last value before any write")
	}

	w.Set(true)
	w.Set(true)
	w.Set(false)

	if len(w.Writes) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(w.Writes))
	}
	last, ok := w.Last()
	if !ok || last != false {
		t.Errorf("expected last=false, got %v (ok=%v)", last, ok)
	}
}

func TestFakeWriterCloseDrivesLow(t *testing.T) {
	w := NewFakeWriter()
	w.Set(true)

	if err := w.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !w.Closed {
		t.Error("should be closed after Close()")
	}
	if last, _ := w.Last(); last {
		t.Error("Close should leave the output low")
	}
}

func TestFakeWriterErr(t *testing.T) {
	w := NewFakeWriter()
	if w.Err() != nil {
		t.Errorf("expected nil error, got %v", w.Err())
	}
	w.SetError = errors.New("line busy")
	w.Set(true)
	if w.Err() == nil {
		t.Error("expected Err to report SetError")
	}
}

var (
	_ Reader = (*FakeReader)(nil)
	_ Writer = (*FakeWriter)(nil)
	_ Reader = (*RealReader)(nil)
	_ Writer = (*RealWriter)(nil)
)
