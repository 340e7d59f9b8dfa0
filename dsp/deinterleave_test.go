package dsp

import "testing"

func TestByteAt(t *testing.T) {
	// symbols >=0 -> 1, <0 -> 0, LSB-first.
	data := []int8{-1, 1, -1, -1, 1, -1, 1, 1} // bits: 0,1,0,0,1,0,1,1
	got := byteAt(data, 0)
	want := byte(0) | 1<<1 | 1<<4 | 1<<6 | 1<<7
	if got != want {
		t.Fatalf("byteAt = %#x, want %#x", got, want)
	}
}

func syncBlock(sync byte, payload []int8) []int8 {
	block := make([]int8, 0, Block)
	for j := 0; j < 8; j++ {
		if sync&(1<<uint(j)) != 0 {
			block = append(block, 1)
		} else {
			block = append(block, -1)
		}
	}
	block = append(block, payload...)
	return block
}

func TestFindSyncAndExtract(t *testing.T) {
	const sync byte = 0xA5
	payload := make([]int8, Payload)
	for i := range payload {
		if i%2 == 0 {
			payload[i] = 1
		} else {
			payload[i] = -1
		}
	}

	var stream []int8
	for i := 0; i < 6; i++ {
		stream = append(stream, syncBlock(sync, payload)...)
	}

	pos, s, err := findSync(stream)
	if err != nil {
		t.Fatalf("findSync: %v", err)
	}
	if pos != 0 || s != sync {
		t.Fatalf("findSync = (%d, %#x), want (0, %#x)", pos, s, sync)
	}

	out := extractPayloads(stream, pos, s)
	if len(out) != 6*Payload {
		t.Fatalf("extractPayloads len = %d, want %d", len(out), 6*Payload)
	}
	for b := 0; b < 6; b++ {
		for i := 0; i < Payload; i++ {
			if out[b*Payload+i] != payload[i] {
				t.Fatalf("block %d byte %d = %d, want %d", b, i, out[b*Payload+i], payload[i])
			}
		}
	}
}

func TestFindSyncTooShort(t *testing.T) {
	if _, _, err := findSync(make([]int8, 10)); err != ErrShort {
		t.Fatalf("findSync on short input = %v, want ErrShort", err)
	}
}

func TestPermuteFormula(t *testing.T) {
	n := baseLen
	payload := make([]int8, n)
	for i := range payload {
		payload[i] = int8(i % 127)
	}
	dst := permute(payload)
	if len(dst) != n {
		t.Fatalf("permute length = %d, want %d", len(dst), n)
	}
	for i := 0; i < 20; i++ {
		j := i + (Branches-1)*Delay - (i%Branches)*baseLen + (Branches/2)*baseLen
		if j < 0 || j >= n {
			continue
		}
		if dst[j] != payload[i] {
			t.Fatalf("dst[%d] = %d, want %d (from src %d)", j, dst[j], payload[i], i)
		}
	}
}

func TestDeinterleaveEmpty(t *testing.T) {
	if _, err := Deinterleave(nil); err != ErrShort {
		t.Fatalf("Deinterleave(nil) err = %v, want ErrShort", err)
	}
}
