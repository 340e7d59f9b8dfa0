/*
DESCRIPTION
  mcu.go implements the Meteor-M2 JPEG-like MCU decoder: per CCSDS
  source packet, it Huffman-decodes 14 MCUs of DC/AC coefficients,
  dequantizes them against a quality-derived table, runs an 8x8
  inverse DCT in double precision, and paints the result into the
  caller's per-APID image plane.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package jpeg decodes Meteor-M2 LRPT JPEG-like MCU packets into a
// per-APID raster image.
package jpeg

import (
	"math"

	"github.com/dvdesolve/liblrpt/bits"
	"github.com/dvdesolve/liblrpt/huffman"
	"github.com/dvdesolve/liblrpt/raster"
	"github.com/pkg/errors"
)

// MCUsPerPacket is the number of 8x8 blocks carried by one source
// packet.
const MCUsPerPacket = 14

// pckPeriod is the packet-counter divisor used to derive the current
// progress-image line from a packet's counter.
const pckPeriod = 43

// pckWrap is the packet-counter modulus; on wraparound first_pck is
// adjusted by this amount.
const pckWrap = 16384

// realign holds the Meteor-M2 APID realignment offsets applied when a
// channel's first_pck is established (empirical, preserve bit-exact).
var realign = map[uint16]int{
	65: -14,
	66: -28,
	68: -28,
}

// stdQtbl is the standard JPEG luminance quantization table, natural
// (row-major) order.
var stdQtbl = [64]int{
	16, 11, 10, 16, 24, 40, 51, 61,
	12, 12, 14, 19, 26, 58, 60, 55,
	14, 13, 16, 24, 40, 57, 69, 56,
	14, 17, 22, 29, 51, 87, 80, 62,
	18, 22, 37, 56, 68, 109, 103, 77,
	24, 35, 55, 64, 81, 104, 113, 92,
	49, 64, 78, 87, 103, 121, 120, 101,
	72, 92, 95, 98, 112, 100, 103, 99,
}

// scanToNatural[k] gives the natural (row-major) index of the k-th
// coefficient in zig-zag scan order.
var scanToNatural = [64]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// naturalToScan is the inverse of scanToNatural, computed once: given
// a natural-order index it gives the scan-order index, matching
// spec.md's "zigzag[i]" usage in the dequantize step.
var naturalToScan [64]int

var (
	cosTable [8][8]float64 // cosTable[x][u] = cos((2x+1)u*pi/16)
	alpha    [8]float64
)

func init() {
	for k, n := range scanToNatural {
		naturalToScan[n] = k
	}
	for x := 0; x < 8; x++ {
		for u := 0; u < 8; u++ {
			cosTable[x][u] = math.Cos(float64(2*x+1) * float64(u) * math.Pi / 16)
		}
	}
	alpha[0] = 1 / math.Sqrt2
	for i := 1; i < 8; i++ {
		alpha[i] = 1
	}
}

// BuildDQT scales the standard quantization table by the transmitted
// quality factor q, per the Meteor-M2 formula.
func BuildDQT(q int) [64]int {
	var f float64
	if q > 20 && q < 50 {
		f = 5000.0 / float64(q)
	} else {
		f = 200.0 - 2.0*float64(q)
	}
	var dqt [64]int
	for i, std := range stdQtbl {
		v := int(math.Round(f / 100 * float64(std)))
		if v < 1 {
			v = 1
		}
		dqt[i] = v
	}
	return dqt
}

// ErrHuffman is returned when a Huffman lookahead finds no matching
// code; the packet carrying it is abandoned, not the whole stream.
var ErrHuffman = errors.New("jpeg: invalid huffman code")

// Packet is one parsed Meteor-M2 MCU packet, ready for MCU decode.
type Packet struct {
	APID   uint16
	MCUID  int
	PckCnt int
	Q      int
	Bits   []byte
}

// ParsePacket splits a CCSDS source packet payload into its MCU
// header fields (2-byte MCU id, 2-byte packet counter, 1-byte quality
// factor, all big-endian) and the trailing Huffman bitstream.
func ParsePacket(apid uint16, data []byte) (Packet, error) {
	if len(data) < 5 {
		return Packet{}, errors.New("jpeg: packet too short for MCU header")
	}
	return Packet{
		APID:   apid,
		MCUID:  int(data[0])<<8 | int(data[1]),
		PckCnt: int(data[2])<<8 | int(data[3]),
		Q:      int(data[4]),
		Bits:   data[5:],
	}, nil
}

type chanState struct {
	initialized bool
	firstPck    int
	prevPck     int
	prevDC      int
}

// Decoder holds the Huffman tables and per-channel progress-image
// state shared across packets. It does not own an image plane; the
// caller passes one into DecodePacket, avoiding a back-reference from
// the JPEG decoder to its owning pipeline.
type Decoder struct {
	huff  *huffman.Table
	chans map[uint16]*chanState
}

// New constructs a Decoder with freshly built Huffman tables.
func New() *Decoder {
	return &Decoder{
		huff:  huffman.New(),
		chans: make(map[uint16]*chanState),
	}
}

// DecodePacket decodes all MCUsPerPacket blocks of pkt and paints them
// into img. Packets for an APID outside raster.MinAPID..raster.MaxAPID
// are accepted as a no-op (spec.md: "other APIDs ... ignored").
func (d *Decoder) DecodePacket(pkt Packet, img *raster.Image) error {
	if pkt.APID < raster.MinAPID || pkt.APID > raster.MaxAPID {
		return nil
	}

	st, ok := d.chans[pkt.APID]
	if !ok {
		st = &chanState{}
		d.chans[pkt.APID] = st
	}

	if !st.initialized {
		st.firstPck = pkt.PckCnt + realign[pkt.APID]
		st.initialized = true
	} else if pkt.PckCnt < st.prevPck {
		st.firstPck -= pckWrap
	}
	st.prevPck = pkt.PckCnt

	curY := 8 * ((pkt.PckCnt - st.firstPck) / pckPeriod)
	img.SetHeight(curY + 8)

	dqt := BuildDQT(pkt.Q)

	r := bits.NewReader(pkt.Bits)
	for m := 0; m < MCUsPerPacket; m++ {
		zdct, err := d.decodeBlock(r, &st.prevDC)
		if err != nil {
			return errors.Wrapf(err, "jpeg: mcu %d", m)
		}
		pixels := reconstructBlock(zdct, dqt)

		baseX := (pkt.MCUID + m) * 8
		for i, v := range pixels {
			x := baseX + i%8
			y := curY + i/8
			if err := img.SetPx(pkt.APID, x+y*img.Width(), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeBlock Huffman-decodes one MCU's 64 zig-zag-order coefficients.
func (d *Decoder) decodeBlock(r *bits.Reader, prevDC *int) ([64]int, error) {
	var zdct [64]int

	peek, err := peek16(r)
	if err != nil {
		return zdct, err
	}
	dc := d.huff.LookupDC(uint16(peek))
	if !dc.Found {
		return zdct, ErrHuffman
	}
	r.AdvanceN(dc.Length)

	var diff int
	if dc.Value > 0 {
		v, err := r.FetchN(dc.Value)
		if err != nil {
			return zdct, err
		}
		diff = extend(int(v), dc.Value)
	}
	*prevDC += diff
	zdct[0] = *prevDC

	k := 1
	for k < 64 {
		peek, err := peek16(r)
		if err != nil {
			return zdct, err
		}
		ac := d.huff.LookupAC(uint16(peek))
		if !ac.Found {
			return zdct, ErrHuffman
		}
		r.AdvanceN(ac.Length)

		sym := d.huff.AC[ac.Value]
		if sym.Run == 0 && sym.Size == 0 {
			break // EOB: remaining coefficients are zero
		}

		k += int(sym.Run)
		if k >= 64 {
			break
		}
		if sym.Size > 0 {
			v, err := r.FetchN(int(sym.Size))
			if err != nil {
				return zdct, err
			}
			zdct[k] = extend(int(v), int(sym.Size))
		}
		k++
	}
	return zdct, nil
}

// peek16 returns the next 16 bits of r as a Huffman lookahead window.
// Where fewer than 16 bits remain, the missing low bits read as zero.
func peek16(r *bits.Reader) (uint32, error) {
	n := r.Len()
	if n <= 0 {
		return 0, bits.ErrShortBuffer
	}
	if n > 16 {
		n = 16
	}
	v, err := r.PeekN(n)
	return v << uint(16-n), err
}

// extend maps a cat-bit Huffman-coded magnitude to its signed JPEG
// amplitude.
func extend(v, cat int) int {
	if cat == 0 {
		return 0
	}
	if v>>(cat-1) != 0 {
		return v
	}
	return v - (1<<cat) + 1
}

// reconstructBlock dequantizes zdct (zig-zag scan order), runs the
// separable 8x8 inverse DCT in double precision, and clamps the
// result to a pixel byte.
func reconstructBlock(zdct [64]int, dqt [64]int) [64]byte {
	var dct [64]float64
	for i := range dct {
		dct[i] = float64(zdct[naturalToScan[i]] * dqt[i])
	}

	var tmp [8][8]float64
	for v := 0; v < 8; v++ {
		for x := 0; x < 8; x++ {
			var sum float64
			for u := 0; u < 8; u++ {
				sum += alpha[u] * dct[v*8+u] * cosTable[x][u]
			}
			tmp[v][x] = sum
		}
	}

	var out [64]byte
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			var sum float64
			for v := 0; v < 8; v++ {
				sum += alpha[v] * tmp[v][x] * cosTable[y][v]
			}
			px := 0.25*sum + 128
			out[y*8+x] = clampByte(px)
		}
	}
	return out
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
}
