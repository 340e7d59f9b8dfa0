/*
DESCRIPTION
  derand.go implements the CCSDS pseudo-randomizer used to whiten LRPT
  CVCDU payloads: XOR against a fixed 255-byte sequence generated from
  the polynomial h(x)=x^8+x^7+x^5+x^3+1, seeded to 0xFF. The attached
  sync marker (the first four bytes of the hard frame) is sent
  un-randomized and is never XORed.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ccsds

// SyncLen is the length, in bytes, of the un-randomized attached sync
// marker prefixed to every hard frame.
const SyncLen = 4

// pnSequence is the 255-byte pseudo-random sequence, generated once at
// init time from the CCSDS whitening polynomial.
var pnSequence [255]byte

func init() {
	// reg holds the next eight sequence bits s[n..n+7], s[n] in bit 7;
	// h(x) gives s[n+8] = s[n+7]^s[n+5]^s[n+3]^s[n]. Each byte packs
	// eight consecutive sequence bits MSB-first.
	reg := byte(0xFF)
	for i := range pnSequence {
		var b byte
		for j := 0; j < 8; j++ {
			b = (b << 1) | (reg >> 7)
			fb := ((reg >> 7) ^ (reg >> 4) ^ (reg >> 2) ^ reg) & 1
			reg = (reg << 1) | fb
		}
		pnSequence[i] = b
	}
}

// Derandomize XORs frame[SyncLen:] against the repeating 255-byte PN
// sequence in place, restoring the scrambled CVCDU payload that
// follows the sync marker. It is its own inverse.
func Derandomize(frame []byte) {
	for i := SyncLen; i < len(frame); i++ {
		frame[i] ^= pnSequence[(i-SyncLen)%len(pnSequence)]
	}
}
