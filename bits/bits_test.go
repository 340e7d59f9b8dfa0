package bits

import "testing"

func TestReaderFetchPeek(t *testing.T) {
	// 0x8f, 0xe3 = 1000 1111, 1110 0011
	r := NewReader([]byte{0x8f, 0xe3})

	if v, err := r.PeekN(4); err != nil || v != 0x8 {
		t.Fatalf("PeekN(4) = %#x, %v, want 0x8, nil", v, err)
	}
	if v, err := r.FetchN(4); err != nil || v != 0x8 {
		t.Fatalf("FetchN(4) = %#x, %v, want 0x8, nil", v, err)
	}
	if v, err := r.FetchN(2); err != nil || v != 0x3 {
		t.Fatalf("FetchN(2) = %#x, %v, want 0x3, nil", v, err)
	}
	if v, err := r.FetchN(4); err != nil || v != 0xf {
		t.Fatalf("FetchN(4) = %#x, %v, want 0xf, nil", v, err)
	}
	if v, err := r.FetchN(6); err != nil || v != 0x23 {
		t.Fatalf("FetchN(6) = %#x, %v, want 0x23, nil", v, err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", r.Len())
	}
}

func TestReaderAdvanceN(t *testing.T) {
	r := NewReader([]byte{0xff, 0x00})
	r.AdvanceN(8)
	v, err := r.FetchN(4)
	if err != nil || v != 0 {
		t.Fatalf("FetchN after AdvanceN = %#x, %v, want 0, nil", v, err)
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := NewReader([]byte{0xff})
	if _, err := r.PeekN(9); err != ErrShortBuffer {
		t.Fatalf("PeekN past end = %v, want ErrShortBuffer", err)
	}
}

func TestWriterWriteReverse(t *testing.T) {
	// Decision bits in chronological order 1,0,1,1,0,0,1,0; traceback
	// presents them to WriteReverse in storage order such that the
	// reverse-index read reproduces chronological order in the output.
	src := []byte{0, 1, 0, 0, 1, 1, 0, 1} // reverse of 1,0,1,1,0,0,1,0
	w := NewWriter()
	w.WriteReverse(src, len(src))
	got := w.Bytes()
	want := byte(0xb2) // 1011 0010
	if len(got) != 1 || got[0] != want {
		t.Fatalf("WriteReverse = %#v, want [%#x]", got, want)
	}
}

func TestWriterConcatenation(t *testing.T) {
	full := []byte{0, 1, 1, 0, 1, 0, 0, 1, 1, 1, 0, 0}

	w1 := NewWriter()
	w1.WriteReverse(full, len(full))
	w1.PadByte()

	w2 := NewWriter()
	w2.WriteReverse(full[6:], len(full)-6)
	w2.WriteReverse(full[:6], 6)
	w2.PadByte()

	if len(w1.Bytes()) != len(w2.Bytes()) {
		t.Fatalf("length mismatch: %d vs %d", len(w1.Bytes()), len(w2.Bytes()))
	}
	for i := range w1.Bytes() {
		if w1.Bytes()[i] != w2.Bytes()[i] {
			t.Fatalf("byte %d mismatch: %#x vs %#x", i, w1.Bytes()[i], w2.Bytes()[i])
		}
	}
}
