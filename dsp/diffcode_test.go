package dsp

import "testing"

func TestIsqrtSignedSignAndMagnitude(t *testing.T) {
	tests := []int32{0, 1, 4, 9, 16129, -16129, 16384, -16384, 100, -100}
	for _, v := range tests {
		got := isqrtSigned(v)
		if v == 0 {
			if got != 0 {
				t.Fatalf("isqrtSigned(0) = %d, want 0", got)
			}
			continue
		}
		wantSign := int8(1)
		av := v
		if v < 0 {
			wantSign = -1
			av = -v
		}
		gotSign := int8(1)
		if got < 0 {
			gotSign = -1
		}
		if gotSign != wantSign {
			t.Fatalf("isqrtSigned(%d) sign = %d, want %d", v, gotSign, wantSign)
		}
		mag := int32(got)
		if mag < 0 {
			mag = -mag
		}
		if mag*mag > av || (mag+1)*(mag+1) <= av {
			t.Fatalf("isqrtSigned(%d) magnitude %d not floor(sqrt(%d))", v, mag, av)
		}
		if mag > 128 {
			t.Fatalf("isqrtSigned(%d) magnitude %d exceeds 128", v, mag)
		}
	}
}

func TestDifferentialDecodeZeroInput(t *testing.T) {
	d := NewDifferential()
	qpsk := make([]int8, 20)
	d.Decode(qpsk)
	for i, v := range qpsk {
		if v != 0 {
			t.Fatalf("qpsk[%d] = %d, want 0", i, v)
		}
	}
}

func TestDifferentialDecodeStatePersists(t *testing.T) {
	d := NewDifferential()
	block1 := []int8{10, 20, 30, 40}
	d.Decode(block1)
	if d.prI == 0 && d.prQ == 0 {
		t.Fatalf("expected non-zero carried state after non-zero input")
	}
}
