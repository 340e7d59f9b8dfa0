/*
DESCRIPTION
  viterbi.go implements the soft-decision K=7, rate-1/2 convolutional
  Viterbi decoder (polynomials 0x4F/0x6D) used to recover the hard
  frame from a deinterleaved, differentially-decoded soft frame, plus
  the re-encoding pass used to estimate bit error rate.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package framesync

import (
	"github.com/dvdesolve/liblrpt/bits"
	"github.com/pkg/errors"
)

// Convolutional code parameters: constraint length 7, rate 1/2.
const (
	PolyA        = 0x4F
	PolyB        = 0x6D
	numStates    = 64 // 2^(K-1)
	maxMetric    = ^uint32(0) / 2
)

// regOut0[r]/regOut1[r] give the two output bits produced when the
// 7-bit register r = (oldState<<1)|inputBit is fed through the two
// generator polynomials.
var regOut0, regOut1 [128]byte

// distTable[outPair][key] is the branch metric |y0-x0|+|y1-x1| for a
// received soft-byte pair packed into key = (y0<<8)|y1 (each reduced
// to its unsigned byte form) against the expected ±255 pair for
// outPair = (out0<<1)|out1.
var distTable [4][65536]uint16

func init() {
	for r := 0; r < 128; r++ {
		regOut0[r] = parity(byte(r) & PolyA)
		regOut1[r] = parity(byte(r) & PolyB)
	}

	for out := 0; out < 4; out++ {
		o0, o1 := (out>>1)&1, out&1
		x0, x1 := int32(-255), int32(-255)
		if o0 == 1 {
			x0 = 255
		}
		if o1 == 1 {
			x1 = 255
		}
		for key := 0; key < 65536; key++ {
			y0 := int32(int8(byte(key >> 8)))
			y1 := int32(int8(byte(key)))
			d := abs32(y0-x0) + abs32(y1-x1)
			distTable[out][key] = uint16(d)
		}
	}
}

func parity(b byte) byte {
	b ^= b >> 4
	b ^= b >> 2
	b ^= b >> 1
	return b & 1
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// ErrTooShort is returned when the soft frame holds no whole QPSK bit
// pairs to decode.
var ErrTooShort = errors.New("framesync: soft frame too short to decode")

// Decode runs the soft-decision Viterbi algorithm over soft (a
// deinterleaved, differentially-decoded soft frame of 2*n bytes,
// representing n encoded bits as I/Q-style soft pairs), returning the
// n decoded bits packed MSB-first into ceil(n/8) bytes, and the
// estimated bit error rate as a percentage (0..100, computed against
// frame_bits = n).
//
// Internally this performs textbook 64-state add-compare-select
// butterfly trellis decoding with full-length traceback (the
// reference's sliding-window history buffer is a memory/latency
// optimization for an embedded, continuously-running decoder; buffering
// the whole frame, consistent with this library's "no streaming"
// scope, gives an identical decode).
func Decode(soft []int8) (decoded []byte, berPercent int, err error) {
	n := len(soft) / 2
	if n == 0 {
		return nil, 0, ErrTooShort
	}

	metrics := [numStates]uint32{}
	for s := 1; s < numStates; s++ {
		metrics[s] = maxMetric
	}

	// decisions[t][ns] records which predecessor of ns (0 = low half,
	// 1 = high half, differing in the oldest/forgotten history bit)
	// survived at time t.
	decisions := make([][numStates]byte, n)

	for t := 0; t < n; t++ {
		y0, y1 := soft[2*t], soft[2*t+1]
		key := (uint16(byte(y0)) << 8) | uint16(byte(y1))

		var next [numStates]uint32
		for ns := 0; ns < numStates; ns++ {
			p0 := ns >> 1
			p1 := p0 | 0x20
			in := byte(ns & 1)

			r0 := (p0 << 1) | int(in)
			r1 := (p1 << 1) | int(in)
			out0 := (int(regOut0[r0]) << 1) | int(regOut1[r0])
			out1 := (int(regOut0[r1]) << 1) | int(regOut1[r1])

			d0 := metrics[p0] + uint32(distTable[out0][key])
			d1 := metrics[p1] + uint32(distTable[out1][key])

			if d0 <= d1 {
				next[ns] = d0
				decisions[t][ns] = 0
			} else {
				next[ns] = d1
				decisions[t][ns] = 1
			}
		}
		metrics = next
	}

	best := 0
	for s := 1; s < numStates; s++ {
		if metrics[s] < metrics[best] {
			best = s
		}
	}

	revBits := make([]byte, n)
	state := best
	for k := 0; k < n; k++ {
		t := n - 1 - k
		forgotten := decisions[t][state]
		revBits[k] = byte(state & 1)
		state = (state >> 1) | (int(forgotten) << 5)
	}

	w := bits.NewWriter()
	w.WriteReverse(revBits, n)
	w.PadByte()
	decoded = w.Bytes()

	ber := estimateBER(soft, decoded, n)
	return decoded, ber, nil
}

// estimateBER re-encodes the n decoded bits through the same
// convolutional encoder and counts how many of the resulting 2n output
// bytes disagree in sign with the originally received soft bytes,
// reporting the count as a percentage of frame_bits = n.
func estimateBER(soft []int8, decoded []byte, n int) int {
	encoded := encode(decoded, n)

	disagreements := 0
	for i := 0; i < 2*n; i++ {
		d := byte(soft[i])
		p := encoded[i] ^ 0xFF
		if corrTab[d][p] == 1 {
			disagreements++
		}
	}
	return 100 * disagreements / n
}

// Encode runs the n information bits packed MSB-first in decoded
// through the same convolutional encoder used internally for BER
// estimation, returning 2n bytes of 0x00/0xFF per output bit. It is
// exported for constructing synthetic test frames; production decode
// never calls it directly.
func Encode(decoded []byte, n int) []byte { return encode(decoded, n) }

// encode runs the n information bits packed MSB-first in decoded
// through the convolutional encoder, starting from the zero state, and
// returns 2n bytes of 0x00/0xFF per output bit (0x00 for a 0 bit,
// 0xFF for a 1 bit), matching the ±255 soft-sample convention used
// elsewhere in this package.
func encode(decoded []byte, n int) []byte {
	out := make([]byte, 2*n)
	state := 0
	for t := 0; t < n; t++ {
		bit := (decoded[t/8] >> uint(7-t%8)) & 1
		r := (state << 1) | int(bit)
		out0 := regOut0[r]
		out1 := regOut1[r]
		if out0 == 1 {
			out[2*t] = 0xFF
		}
		if out1 == 1 {
			out[2*t+1] = 0xFF
		}
		state = r & 0x3F
	}
	return out
}
