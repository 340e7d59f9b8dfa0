/*
DESCRIPTION
  deinterleave.go locates the repeating sync marker in a continuous LRPT
  soft-symbol stream, strips it, and undoes the convolutional
  interleaver applied on the spacecraft before transmission.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dsp implements the burst-error convolutional deinterleaver
// (with sync-word resynchronization) and the differential QPSK decoder
// that together prepare a raw soft-symbol stream for frame
// synchronization and Viterbi decoding.
package dsp

import "github.com/pkg/errors"

// Convolutional interleaver parameters, fixed by the Meteor-M2 LRPT
// downlink profile.
const (
	Branches = 36   // B
	Delay    = 2048 // D
	baseLen  = Branches * Delay
	Payload  = 72 // P, bits of payload per block
	SyncBits = 8   // S, bits of sync marker per block
	Block    = Payload + SyncBits // T
)

// ErrNoSync is returned when no repeating sync byte can be located in
// the supplied window.
var ErrNoSync = errors.New("dsp: sync word not found")

// ErrShort is returned when the input is too short to contain even one
// resync search window.
var ErrShort = errors.New("dsp: input too short")

// byteAt packs 8 consecutive soft symbols starting at bit position pos
// into a byte, LSB-first: the symbol at pos contributes bit 0, the
// symbol at pos+7 contributes bit 7. A negative symbol is bit 0, a
// non-negative symbol is bit 1.
func byteAt(data []int8, pos int) byte {
	var b byte
	for j := 0; j < 8; j++ {
		if data[pos+j] >= 0 {
			b |= 1 << uint(j)
		}
	}
	return b
}

// findSync scans data (of more than 4*Block+8 samples; shorter input
// yields ErrShort) for a position at which the byte-packed value
// repeats identically at offsets +Block, +2*Block, +3*Block and
// +4*Block. It returns the offset and the repeating sync byte.
func findSync(data []int8) (pos int, sync byte, err error) {
	limit := len(data) - 4*Block - 8
	if limit <= 0 {
		return 0, 0, ErrShort
	}
	for i := 0; i < limit; i++ {
		b0 := byteAt(data, i)
		if byteAt(data, i+Block) != b0 {
			continue
		}
		if byteAt(data, i+2*Block) != b0 {
			continue
		}
		if byteAt(data, i+3*Block) != b0 {
			continue
		}
		if byteAt(data, i+4*Block) != b0 {
			continue
		}
		return i, b0, nil
	}
	return 0, 0, ErrNoSync
}

// extractPayloads walks forward from (pos, sync), confirming each
// expected sync slot and copying out the Payload bits that follow it,
// until the stream runs out of room for another full block. It
// re-searches for sync, sliding the window forward by (Delay-1)*Block,
// whenever an expected slot fails to match.
func extractPayloads(data []int8, pos int, sync byte) []int8 {
	out := make([]int8, 0, (len(data)/Block)*Payload)
	cur := pos
	for cur+Block <= len(data) {
		if byteAt(data, cur) == sync {
			out = append(out, data[cur+SyncBits:cur+Block]...)
			cur += Block
			continue
		}

		// Lost lock: slide forward and try to reacquire.
		next := cur + (Delay-1)*Block
		if next+4*Block+8 >= len(data) {
			break
		}
		p, s, err := findSync(data[next:])
		if err != nil {
			break
		}
		cur = next + p
		sync = s
	}
	return out
}

// permute applies the deinterleaver's fixed permutation to payload
// (the concatenated, sync-stripped bit stream), producing the
// deinterleaved stream of the same length. Entries whose destination
// index falls outside [0, len(payload)) are dropped, matching the
// leading/trailing fuzz the spacecraft encoder introduces at block
// boundaries.
func permute(payload []int8) []int8 {
	n := len(payload)
	dst := make([]int8, n)
	for i := 0; i < n; i++ {
		j := i + (Branches-1)*Delay - (i%Branches)*baseLen + (Branches/2)*baseLen
		if j >= 0 && j < n {
			dst[j] = payload[i]
		}
	}
	return dst
}

// Deinterleave locates the sync marker in data, strips it out, and
// undoes the convolutional interleaving, returning the recovered
// payload bit stream in original (pre-interleave) order. It reports
// ErrShort or ErrNoSync if data cannot be locked onto.
func Deinterleave(data []int8) ([]int8, error) {
	if len(data) == 0 {
		return nil, ErrShort
	}
	pos, sync, err := findSync(data)
	if err != nil {
		return nil, err
	}
	payload := extractPayloads(data, pos, sync)
	return permute(payload), nil
}
