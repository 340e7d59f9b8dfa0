/*
DESCRIPTION
  bits.go provides a bit-level reader and writer over an in-memory byte
  buffer: the JPEG MCU decoder walks a packet's Huffman bitstream with
  the Reader, and the Viterbi decoder packs its traceback output with
  the Writer.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bits provides a bit reader and bit writer over an in-memory
// byte buffer. Unlike an io.Reader-backed bit reader, Reader exposes an
// explicit bit cursor that can be peeked without being advanced, and
// Writer exposes a reverse-order packer used by Viterbi traceback, which
// produces decided bits in reverse chronological order.
package bits

import "github.com/pkg/errors"

// ErrShortBuffer is returned when a read would run past the end of the
// underlying buffer.
var ErrShortBuffer = errors.New("bits: short buffer")

// ErrWidth is returned when n is outside [0,32] for a peek or fetch.
var ErrWidth = errors.New("bits: width out of range")

// Reader reads bits MSB-first from a fixed byte buffer, maintaining an
// in-buffer bit cursor.
type Reader struct {
	buf []byte
	pos int // bit offset of the cursor from the start of buf.
}

// NewReader returns a Reader over buf. The cursor starts at bit 0.
func NewReader(buf []byte) *Reader { return &Reader{buf: buf} }

// Len returns the number of bits remaining unread.
func (r *Reader) Len() int { return len(r.buf)*8 - r.pos }

// Pos returns the current bit offset from the start of the buffer.
func (r *Reader) Pos() int { return r.pos }

// Seek moves the cursor to an absolute bit offset.
func (r *Reader) Seek(pos int) { r.pos = pos }

// PeekN returns the next n bits (0 <= n <= 32), MSB-first, without
// advancing the cursor.
func (r *Reader) PeekN(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, ErrWidth
	}
	if n > r.Len() {
		return 0, ErrShortBuffer
	}
	return r.peekAt(r.pos, n), nil
}

// FetchN reads the next n bits (0 <= n <= 32), MSB-first, and advances
// the cursor by n.
func (r *Reader) FetchN(n int) (uint32, error) {
	v, err := r.PeekN(n)
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

// AdvanceN moves the cursor forward by n bits without returning a
// value. n may be negative to rewind.
func (r *Reader) AdvanceN(n int) { r.pos += n }

func (r *Reader) peekAt(pos, n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		bytePos := (pos + i) / 8
		bitPos := 7 - uint((pos+i)%8)
		bit := (r.buf[bytePos] >> bitPos) & 1
		v = (v << 1) | uint32(bit)
	}
	return v
}

// Writer packs bits MSB-first into a growing byte buffer. It is used
// exclusively by Viterbi traceback via WriteReverse, which accepts
// decision bits produced in reverse chronological order.
type Writer struct {
	buf    []byte
	cur    byte
	curLen int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// WriteReverse appends the first n entries of src, read in reverse
// index order (src[n-1] down to src[0]), as single bits packed
// MSB-first into the destination buffer. Each entry of src is treated
// as a bit: zero or non-zero.
//
// Concatenating successive WriteReverse calls over sub-slices yields
// the same result as a single WriteReverse call over the concatenation
// of those sub-slices in the same (reverse) order, since the partial
// byte accumulator persists across calls.
func (w *Writer) WriteReverse(src []byte, n int) {
	for i := n - 1; i >= 0; i-- {
		w.putBit(src[i])
	}
}

func (w *Writer) putBit(b byte) {
	w.cur = (w.cur << 1) | (b & 1)
	w.curLen++
	if w.curLen == 8 {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.curLen = 0
	}
}

// Len returns the number of whole bytes emitted so far.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the whole bytes emitted so far. Any partial byte
// accumulated in cur is not included until padded out by PadByte.
func (w *Writer) Bytes() []byte { return w.buf }

// PadByte flushes a partial trailing byte, left-shifting the
// accumulated bits into MSB position and zero-filling the remainder.
// It is a no-op if the writer is already byte-aligned.
func (w *Writer) PadByte() {
	if w.curLen == 0 {
		return
	}
	w.buf = append(w.buf, w.cur<<uint(8-w.curLen))
	w.cur = 0
	w.curLen = 0
}

// Reset discards all accumulated output.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.cur = 0
	w.curLen = 0
}
