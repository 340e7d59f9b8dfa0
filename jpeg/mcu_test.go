package jpeg

import (
	"testing"

	"github.com/dvdesolve/liblrpt/bits"
	"github.com/dvdesolve/liblrpt/huffman"
	"github.com/dvdesolve/liblrpt/raster"
)

func TestBuildDQTClampAndMidRange(t *testing.T) {
	dqt := BuildDQT(100) // quality 100 -> f = 200-200 = 0 -> every entry clamped to 1
	for i, v := range dqt {
		if v != 1 {
			t.Fatalf("dqt[%d] = %d, want 1 at q=100", i, v)
		}
	}

	dqt = BuildDQT(25) // inside (20,50): f = 5000/25 = 200
	if dqt[0] != 32 { // round(200/100 * 16) = 32
		t.Fatalf("dqt[0] = %d, want 32", dqt[0])
	}
}

func TestZigzagIsAPermutation(t *testing.T) {
	seen := map[int]bool{}
	for _, n := range scanToNatural {
		if seen[n] {
			t.Fatalf("scanToNatural has a repeated natural index %d", n)
		}
		seen[n] = true
	}
	for i := 0; i < 64; i++ {
		if scanToNatural[naturalToScan[i]] != i {
			t.Fatalf("naturalToScan is not the inverse of scanToNatural at %d", i)
		}
	}
}

func TestExtend(t *testing.T) {
	cases := []struct{ v, cat, want int }{
		{0, 0, 0},
		{1, 1, 1},
		{0, 1, -1},
		{3, 2, 3},
		{0, 2, -3},
		{2, 2, 2},
	}
	for _, c := range cases {
		if got := extend(c.v, c.cat); got != c.want {
			t.Fatalf("extend(%d,%d) = %d, want %d", c.v, c.cat, got, c.want)
		}
	}
}

// findDCCode locates, via the constructed table, the canonical code bits
// for a DC category (category >= 0) by scanning ascending lookahead
// windows: the first window matching a given value is always that
// value's code left-packed into the 16-bit window, since fillLUT
// populates each code as a contiguous ascending block.
func findDCCode(huff *huffman.Table, category int) (code []byte, length int) {
	for w := 0; w < 65536; w++ {
		l := huff.LookupDC(uint16(w))
		if l.Found && l.Value == category {
			return toBitSlice(w>>(16-l.Length), l.Length), l.Length
		}
	}
	return nil, 0
}

func findACCodeForSymbol(huff *huffman.Table, run, size byte) (code []byte, length int) {
	for w := 0; w < 65536; w++ {
		l := huff.LookupAC(uint16(w))
		if !l.Found {
			continue
		}
		sym := huff.AC[l.Value]
		if sym.Run == run && sym.Size == size {
			return toBitSlice(w>>(16-l.Length), l.Length), l.Length
		}
	}
	return nil, 0
}

func toBitSlice(code, length int) []byte {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = byte((code >> (length - 1 - i)) & 1)
	}
	return out
}

// reverseBits reverses a slice of 0/1 bytes, since Writer.WriteReverse
// reads its source in reverse index order.
func reverseBits(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// buildAllZeroMCUStream builds a Huffman bitstream encoding n MCUs
// each with DC category 0 (no diff) followed immediately by EOB.
func buildAllZeroMCUStream(huff *huffman.Table, n int) []byte {
	dcCode, dcLen := findDCCode(huff, 0)
	eobCode, eobLen := findACCodeForSymbol(huff, 0, 0)

	w := bits.NewWriter()
	for i := 0; i < n; i++ {
		w.WriteReverse(reverseBits(dcCode), dcLen)
		w.WriteReverse(reverseBits(eobCode), eobLen)
	}
	w.PadByte()
	return w.Bytes()
}

func TestDecodePacketAllZeroWritesMidGray(t *testing.T) {
	img := raster.New(1568)
	dec := New()

	stream := buildAllZeroMCUStream(dec.huff, MCUsPerPacket)
	header := []byte{0x00, 0x00, 0x00, 14, 100} // mcu_id=0, pck_cnt=14, q=100
	data := append(header, stream...)

	pkt, err := ParsePacket(65, data)
	if err != nil {
		t.Fatalf("ParsePacket: %v", err)
	}
	if err := dec.DecodePacket(pkt, img); err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}

	w, h, _ := img.Bounds(65)
	if w != 1568 || h != 8 {
		t.Fatalf("Bounds = (%d,%d), want (1568,8)", w, h)
	}
	for x := 0; x < MCUsPerPacket*8; x++ {
		for y := 0; y < 8; y++ {
			v, err := img.GetPx(65, x+y*1568)
			if err != nil {
				t.Fatalf("GetPx: %v", err)
			}
			if v != 128 {
				t.Fatalf("pixel (%d,%d) = %d, want 128", x, y, v)
			}
		}
	}
}
