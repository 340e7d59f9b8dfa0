package ccsds

import (
	"math/rand"
	"testing"
)

func randomMessage(rng *rand.Rand) []byte {
	msg := make([]byte, rsK)
	rng.Read(msg)
	return msg
}

func buildCodeword(msg []byte) []byte {
	cw := make([]byte, rsN)
	copy(cw, msg)
	copy(cw[rsK:], EncodeParity(msg))
	return cw
}

func TestDecodeCleanCodeword(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	msg := randomMessage(rng)
	cw := buildCodeword(msg)

	n, err := Decode(cw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 0 {
		t.Fatalf("corrected = %d, want 0 for a clean codeword", n)
	}
	for i := range msg {
		if cw[i] != msg[i] {
			t.Fatalf("cw[%d] = %#x, want %#x", i, cw[i], msg[i])
		}
	}
}

func TestDecodeCorrectsMaxErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	msg := randomMessage(rng)
	cw := buildCodeword(msg)
	want := append([]byte(nil), cw...)

	positions := rng.Perm(rsN)[:16]
	for _, p := range positions {
		var delta byte
		for delta == 0 {
			delta = byte(rng.Intn(256))
		}
		cw[p] ^= delta
	}

	n, err := Decode(cw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if n != 16 {
		t.Fatalf("corrected = %d, want 16", n)
	}
	for i := range want {
		if cw[i] != want[i] {
			t.Fatalf("cw[%d] = %#x, want %#x", i, cw[i], want[i])
		}
	}
}

func TestDecodeFailsBeyondCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	msg := randomMessage(rng)
	cw := buildCodeword(msg)

	positions := rng.Perm(rsN)[:17]
	for _, p := range positions {
		var delta byte
		for delta == 0 {
			delta = byte(rng.Intn(256))
		}
		cw[p] ^= delta
	}

	if _, err := Decode(cw); err == nil {
		t.Fatalf("Decode succeeded with 17 errors, want ErrUncorrectable or a mis-decode")
	}
}

func TestDecodeWrongLength(t *testing.T) {
	if _, err := Decode(make([]byte, 10)); err == nil {
		t.Fatalf("Decode with wrong length: want error")
	}
}

func TestGFTablesConsistent(t *testing.T) {
	if alphaTo[0] != 1 {
		t.Fatalf("alphaTo[0] = %d, want 1", alphaTo[0])
	}
	seen := map[byte]bool{}
	for i := 0; i < rsN; i++ {
		v := alphaTo[i]
		if seen[v] {
			t.Fatalf("alphaTo[%d] = %#x repeats a prior value; table is not a full cycle", i, v)
		}
		seen[v] = true
		if indexOf[v] != i {
			t.Fatalf("indexOf[alphaTo[%d]] = %d, want %d", i, indexOf[v], i)
		}
	}
}
