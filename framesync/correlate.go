/*
DESCRIPTION
  correlate.go locates the CCSDS attached sync marker, in its
  Viterbi-encoded form, across the eight phase/conjugation hypotheses a
  QPSK downlink can present it in.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package framesync locates frame alignment (Correlator) and performs
// soft-decision convolutional decoding (Viterbi) of a CCSDS LRPT
// downlink. It is named framesync, rather than sync, to avoid
// shadowing the standard library's sync package at import sites.
package framesync

// asmVCDU is the Viterbi-encoded form of the CCSDS attached sync
// marker 0x1ACFFC1D.
const asmVCDU uint64 = 0xFCA2B63DB00D9794

// CorrLimit is the early-exit correlation score: once any pattern's
// running score exceeds this, Correlate returns immediately.
const CorrLimit = 55

// NumPatterns is the number of phase/conjugation hypotheses searched.
const NumPatterns = 8

// PatternLen is the bit length of the Viterbi-encoded sync word.
const PatternLen = 64

// patterns[bit][pattern] holds 0xFF where the expected bit is 1, 0x00
// where it is 0, column-major as in the source design.
var patterns [PatternLen][NumPatterns]byte

// corrTab[d][p] is 1 iff the soft byte d (reinterpreted unsigned) agrees
// in sign with the expected bit-expanded byte p (0x00 or 0xFF).
var corrTab [256][256]byte

func init() {
	qBytes := [8]byte{}
	for i := 0; i < 8; i++ {
		qBytes[i] = byte(asmVCDU >> uint(56-8*i))
	}

	invQBytes := mapBytes(invertByte, qBytes)

	base := [4][8]byte{
		qBytes,
		mapBytes(shift1Byte, qBytes),
		mapBytes(xorByte, qBytes),
		mapBytes(xorByte, mapBytes(shift1Byte, qBytes)),
	}
	inv := [4][8]byte{
		invQBytes,
		mapBytes(shift1Byte, invQBytes),
		mapBytes(xorByte, invQBytes),
		mapBytes(xorByte, mapBytes(shift1Byte, invQBytes)),
	}

	for p := 0; p < 4; p++ {
		expandPattern(base[p], p)
		expandPattern(inv[p], p+4)
	}

	for d := 0; d < 256; d++ {
		for p := 0; p < 256; p++ {
			if (d > 127 && p == 0x00) || (d <= 127 && p == 0xFF) {
				corrTab[d][p] = 1
			}
		}
	}
}

func expandPattern(word [8]byte, pattern int) {
	for bit := 0; bit < PatternLen; bit++ {
		byteIdx := bit / 8
		bitIdx := 7 - uint(bit%8)
		if (word[byteIdx]>>bitIdx)&1 != 0 {
			patterns[bit][pattern] = 0xFF
		} else {
			patterns[bit][pattern] = 0x00
		}
	}
}

func mapBytes(f func(byte) byte, src [8]byte) [8]byte {
	var dst [8]byte
	for i, b := range src {
		dst[i] = f(b)
	}
	return dst
}

func shift1Byte(b byte) byte {
	return (((b & 0x55) ^ 0x55) << 1) | ((b & 0xAA) >> 1)
}

func xorByte(b byte) byte { return b ^ 0xFF }

func invertByte(b byte) byte {
	return ((b & 0x55) << 1) | ((b & 0xAA) >> 1)
}

// Result holds the per-pattern correlation outcome of a Correlate call.
type Result struct {
	Best        int        // winning pattern id, 0..7
	Position    [8]int     // best match offset, per pattern
	Correlation [8]int     // best match score, per pattern
}

// Correlate scans data (a run of soft bytes, each an int8 treated as an
// unsigned byte index for sign comparison) for the best-matching
// position of each of the eight sync patterns, returning the winning
// pattern id and per-pattern position/score. It returns early, with
// whichever pattern triggered it as Best, the moment any pattern's
// score exceeds CorrLimit.
func Correlate(data []int8) Result {
	var res Result
	if len(data) < PatternLen {
		return res
	}

	limit := len(data) - PatternLen
	for i := 0; i <= limit; i++ {
		var tmp [NumPatterns]int
		for j := 0; j < PatternLen; j++ {
			d := int(byte(data[i+j]))
			row := corrTab[d]
			for p := 0; p < NumPatterns; p++ {
				tmp[p] += int(row[patterns[j][p]])
			}
		}
		for p := 0; p < NumPatterns; p++ {
			if tmp[p] > res.Correlation[p] {
				res.Correlation[p] = tmp[p]
				res.Position[p] = i
				if res.Correlation[p] > CorrLimit {
					res.Best = p
					return res
				}
			}
		}
	}

	best := 0
	for p := 1; p < NumPatterns; p++ {
		if res.Correlation[p] > res.Correlation[best] {
			best = p
		}
	}
	res.Best = best
	return res
}
