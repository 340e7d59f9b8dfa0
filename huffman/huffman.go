/*
DESCRIPTION
  huffman.go builds the two JPEG Huffman tables (DC and AC, standard
  luminance) used by the LRPT MCU decoder, and the 16-bit lookahead
  LUTs that turn a bitstream peek directly into a decoded symbol
  without walking the code tree bit by bit.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package huffman constructs the standard JPEG luminance DC and AC
// Huffman tables and their 16-bit lookahead decode LUTs.
package huffman

// dcBits/dcVals are the standard JPEG DC luminance table (ITU T.81
// Table K.3): BITS gives the code count per length 1..16, VALS gives
// the category assigned to each code in canonical order.
var (
	dcBits = [16]byte{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0}
	dcVals = [12]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
)

// acBits/acVals are the standard JPEG AC luminance table (ITU T.81
// Table K.5), 178 bytes total (16 + 162) per spec. Each value byte
// packs (run<<4)|size; 0x00 is EOB (run=0,size=0), 0xF0 is ZRL
// (run=15,size=0).
var (
	acBits = [16]byte{0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 0x7D}
	acVals = [162]byte{
		0x01, 0x02, 0x03, 0x00, 0x04, 0x11, 0x05, 0x12,
		0x21, 0x31, 0x41, 0x06, 0x13, 0x51, 0x61, 0x07,
		0x22, 0x71, 0x14, 0x32, 0x81, 0x91, 0xA1, 0x08,
		0x23, 0x42, 0xB1, 0xC1, 0x15, 0x52, 0xD1, 0xF0,
		0x24, 0x33, 0x62, 0x72, 0x82, 0x09, 0x0A, 0x16,
		0x17, 0x18, 0x19, 0x1A, 0x25, 0x26, 0x27, 0x28,
		0x29, 0x2A, 0x34, 0x35, 0x36, 0x37, 0x38, 0x39,
		0x3A, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49,
		0x4A, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59,
		0x5A, 0x63, 0x64, 0x65, 0x66, 0x67, 0x68, 0x69,
		0x6A, 0x73, 0x74, 0x75, 0x76, 0x77, 0x78, 0x79,
		0x7A, 0x83, 0x84, 0x85, 0x86, 0x87, 0x88, 0x89,
		0x8A, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97, 0x98,
		0x99, 0x9A, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7,
		0xA8, 0xA9, 0xAA, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6,
		0xB7, 0xB8, 0xB9, 0xBA, 0xC2, 0xC3, 0xC4, 0xC5,
		0xC6, 0xC7, 0xC8, 0xC9, 0xCA, 0xD2, 0xD3, 0xD4,
		0xD5, 0xD6, 0xD7, 0xD8, 0xD9, 0xDA, 0xE1, 0xE2,
		0xE3, 0xE4, 0xE5, 0xE6, 0xE7, 0xE8, 0xE9, 0xEA,
		0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7, 0xF8,
		0xF9, 0xFA,
	}
)

// DCCategoryLength gives the canonical JPEG DC Huffman code length for
// each category 0..11, reproduced here (it also falls directly out of
// dcBits/dcVals) because the MCU decoder advances the bitstream by it
// directly after a category lookup.
var DCCategoryLength = [12]int{2, 3, 3, 3, 3, 3, 4, 5, 6, 7, 8, 9}

// Symbol is one decoded AC table entry: run-length of preceding zero
// coefficients and the size (in bits) of the amplitude that follows.
type Symbol struct {
	Run, Size byte
}

// Lookup is the tagged result of a 16-bit lookahead table probe,
// replacing a magic -1 sentinel with an explicit Found flag.
type Lookup struct {
	Found  bool
	Value  int // DC: category 0..11. AC: index into Table.AC.
	Length int // bits consumed from the stream
}

// code/length pairs built once per table via the canonical JPEG
// algorithm (ITU T.81 Annex C).
type entry struct {
	code, length int
}

func buildCodes(bitsCount []byte, n int) []entry {
	entries := make([]entry, n)
	code, k := 0, 0
	for l := 1; l <= 16; l++ {
		for i := 0; i < int(bitsCount[l-1]); i++ {
			entries[k] = entry{code: code, length: l}
			code++
			k++
		}
		code <<= 1
	}
	return entries
}

// Table holds the constructed DC/AC lookahead LUTs for one MCU
// decoder instance. Unlike the reference design's process-wide
// globals, it is owned by and passed explicitly from the caller (see
// spec.md's "global mutable LUTs" design note).
type Table struct {
	AC []Symbol

	dcLUT [65536]int16
	acLUT [65536]int16
	acLen []int // code length for AC table index k, keyed by k
}

// New constructs the standard luminance DC/AC Huffman tables and their
// lookahead LUTs.
func New() *Table {
	t := &Table{
		AC:    make([]Symbol, len(acVals)),
		acLen: make([]int, len(acVals)),
	}

	for i := range t.dcLUT {
		t.dcLUT[i] = -1
	}
	for i := range t.acLUT {
		t.acLUT[i] = -1
	}

	dcCodes := buildCodes(dcBits[:], len(dcVals))
	for k, e := range dcCodes {
		fillLUT(t.dcLUT[:], e.code, e.length, int16(dcVals[k]))
	}

	acCodes := buildCodes(acBits[:], len(acVals))
	for k, e := range acCodes {
		v := acVals[k]
		t.AC[k] = Symbol{Run: v >> 4, Size: v & 0x0F}
		t.acLen[k] = e.length
		fillLUT(t.acLUT[:], e.code, e.length, int16(k))
	}

	return t
}

// fillLUT marks every 16-bit window whose top `length` bits equal code
// with value, across the full window space (the low 16-length bits
// are don't-care lookahead beyond the code itself).
func fillLUT(lut []int16, code, length int, value int16) {
	shift := 16 - length
	base := code << shift
	span := 1 << shift
	for w := base; w < base+span; w++ {
		lut[w] = value
	}
}

// LookupDC decodes a DC category from a 16-bit MSB-aligned lookahead
// window.
func (t *Table) LookupDC(window uint16) Lookup {
	v := t.dcLUT[window]
	if v < 0 {
		return Lookup{}
	}
	return Lookup{Found: true, Value: int(v), Length: DCCategoryLength[v]}
}

// LookupAC decodes an index into Table.AC from a 16-bit MSB-aligned
// lookahead window.
func (t *Table) LookupAC(window uint16) Lookup {
	v := t.acLUT[window]
	if v < 0 {
		return Lookup{}
	}
	return Lookup{Found: true, Value: int(v), Length: t.acLen[v]}
}
