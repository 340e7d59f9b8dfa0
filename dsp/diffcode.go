/*
DESCRIPTION
  diffcode.go undoes the on-board differential QPSK encoder, carrying
  inter-call state (the last symbol's I/Q values) across successive
  blocks of the same stream.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dsp

// sqrtTable[v] = floor(sqrt(v)) for v in [0, 16384], precomputed once
// at package init so isqrtSigned never calls math.Sqrt in the hot
// path.
var sqrtTable [16385]uint8

func init() {
	for v := 0; v <= 16384; v++ {
		r := 0
		for (r+1)*(r+1) <= v {
			r++
		}
		sqrtTable[v] = uint8(r)
	}
}

// isqrtSigned returns sign(v)*floor(sqrt(|v|)) for |v| <= 16384, a
// value in [-128, 128]. It is the soft-domain analogue of a
// sign-preserving square root, used to reverse the differential
// encoder's multiplicative combining of consecutive symbols while
// keeping products bounded in int8 range (see sat8).
func isqrtSigned(v int32) int16 {
	if v == 0 {
		return 0
	}
	sign := int32(1)
	if v < 0 {
		sign = -1
		v = -v
	}
	if v > 16384 {
		v = 16384
	}
	return int16(sign * int32(sqrtTable[v]))
}

// sat8 narrows an isqrtSigned result to a soft symbol, saturating +128
// to 127.
func sat8(v int16) int8 {
	if v > 127 {
		return 127
	}
	return int8(v)
}

// Differential carries the differential decoder's inter-block state:
// the previous block's final I and Q soft values.
type Differential struct {
	prI, prQ int8
}

// NewDifferential returns a Differential decoder with zeroed history.
func NewDifferential() *Differential { return &Differential{} }

// Decode undoes the differential QPSK encoding of qpsk in place. qpsk
// holds L QPSK symbols as 2*L soft bytes (I0,Q0,I1,Q1,...).
func (d *Differential) Decode(qpsk []int8) {
	l := len(qpsk) / 2
	if l == 0 {
		return
	}

	t1, t2 := qpsk[0], qpsk[1]
	qpsk[0] = sat8(isqrtSigned(int32(qpsk[0]) * int32(d.prI)))
	qpsk[1] = sat8(isqrtSigned(-int32(qpsk[1]) * int32(d.prQ)))

	for i := 1; i < l; i++ {
		x, y := qpsk[2*i], qpsk[2*i+1]
		qpsk[2*i] = sat8(isqrtSigned(int32(qpsk[2*i]) * int32(t1)))
		qpsk[2*i+1] = sat8(isqrtSigned(-int32(qpsk[2*i+1]) * int32(t2)))
		t1, t2 = x, y
	}

	d.prI, d.prQ = t1, t2
}
