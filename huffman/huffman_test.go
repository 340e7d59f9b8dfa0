package huffman

import "testing"

func TestLookupDCAllCategories(t *testing.T) {
	table := New()
	codes := buildCodes(dcBits[:], len(dcVals))

	for k, e := range codes {
		window := uint16(e.code << (16 - e.length))
		got := table.LookupDC(window)
		if !got.Found {
			t.Fatalf("category %d: not found", dcVals[k])
		}
		if got.Value != int(dcVals[k]) {
			t.Fatalf("category index %d: Value = %d, want %d", k, got.Value, dcVals[k])
		}
		if got.Length != e.length {
			t.Fatalf("category index %d: Length = %d, want %d", k, got.Length, e.length)
		}
	}
}

func TestDCCategoryLengthMatchesCanonicalCodes(t *testing.T) {
	codes := buildCodes(dcBits[:], len(dcVals))
	for k, e := range codes {
		if DCCategoryLength[dcVals[k]] != e.length {
			t.Fatalf("DCCategoryLength[%d] = %d, want %d", dcVals[k], DCCategoryLength[dcVals[k]], e.length)
		}
	}
}

func TestLookupACKnownEntries(t *testing.T) {
	table := New()
	codes := buildCodes(acBits[:], len(acVals))

	// index 3 is value 0x00 -> EOB (run=0, size=0).
	e := codes[3]
	window := uint16(e.code << (16 - e.length))
	got := table.LookupAC(window)
	if !got.Found {
		t.Fatalf("EOB entry not found")
	}
	sym := table.AC[got.Value]
	if sym.Run != 0 || sym.Size != 0 {
		t.Fatalf("EOB symbol = %+v, want run=0 size=0", sym)
	}

	// index 31 is value 0xF0 -> ZRL (run=15, size=0).
	e = codes[31]
	window = uint16(e.code << (16 - e.length))
	got = table.LookupAC(window)
	if !got.Found {
		t.Fatalf("ZRL entry not found")
	}
	sym = table.AC[got.Value]
	if sym.Run != 15 || sym.Size != 0 {
		t.Fatalf("ZRL symbol = %+v, want run=15 size=0", sym)
	}
}

func TestLookupDCZeroWindowIsCategoryZero(t *testing.T) {
	table := New()
	got := table.LookupDC(0)
	if !got.Found || got.Value != 0 || got.Length != 2 {
		t.Fatalf("LookupDC(0) = %+v, want Found Value=0 Length=2", got)
	}
}
