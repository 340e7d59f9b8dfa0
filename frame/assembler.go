/*
DESCRIPTION
  assembler.go implements the frame/packet assembler: it consumes a
  continuous soft-symbol stream, tracks correlator/alignment state
  across calls, surfaces RS-corrected CVCDUs, and reassembles CCSDS
  M-PDU packets that may span several CVCDUs.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame assembles CCSDS source packets out of a raw LRPT soft-
// symbol stream: per-block frame synchronization, Viterbi/RS recovery
// of the CVCDU, and M-PDU packet reassembly.
package frame

import (
	"encoding/binary"
	"math/bits"

	"github.com/ausocean/utils/logging"
	"github.com/dvdesolve/liblrpt/ccsds"
	"github.com/dvdesolve/liblrpt/framesync"
	"github.com/pkg/errors"
)

// Frame geometry, per spec.
const (
	SoftFrameLen   = 16384
	HardFrameLen   = 1024
	CorrelationMin = 45
	MaxPacketLen   = 2048
)

// CCSDS attached sync marker, and the 32-bit pattern the hard-frame
// polarity check tests a decoded sync word against (asmInverted is not
// the bitwise complement of asmDirect).
const (
	asmDirect   uint32 = 0x1ACFFC1D
	asmInverted uint32 = 0xE20330E5

	// asmInvertedCmp is the exact bitwise complement of asmInverted,
	// used (not asmDirect) as the other side of the popcount
	// comparison that decides whether to invert the hard frame: the
	// comparison only needs to measure which of the two canonical
	// sync values is closer in Hamming distance, and asmDirect is not
	// asmInverted's complement.
	asmInvertedCmp uint32 = 0x1DFCCF1A
)

// ErrShort is returned when the input does not hold two soft frames
// (the frame to decode plus one frame of lookahead) from the
// assembler's current read position.
var ErrShort = errors.New("frame: insufficient lookahead in input")

// Packet is one reassembled CCSDS source packet addressed to an
// instrument APID.
type Packet struct {
	APID uint16
	Data []byte
}

// Assembler holds cross-call frame-synchronization and packet
// reassembly state for one LRPT downlink. It is not safe for
// concurrent use; create one per decoder.
type Assembler struct {
	log logging.Logger

	pos    int
	locked bool

	corrWord int
	corrPos  int
	corrVal  int

	aligned []int8

	pzBuf []byte

	// Counters, exported via decoder.Stats.
	FramingOK   bool
	FramesTotal int
	FramesOK    int
	CVCDUCount  int
	LastBER     int
}

// New returns an Assembler ready to consume a soft-symbol stream from
// its start. A nil logger is replaced with a no-op logger.
func New(log logging.Logger) *Assembler {
	if log == nil {
		log = logging.New(logging.Error, nil, true)
	}
	return &Assembler{
		log:     log,
		aligned: make([]int8, SoftFrameLen),
	}
}

// Step consumes one soft frame's worth of input starting at the
// assembler's current position, returning any packets it completed.
// It returns ErrShort if fewer than two soft frames remain in input
// from the current position; the caller should stop calling Step and
// report however many symbols were consumed via Pos.
func (a *Assembler) Step(input []int8) ([]Packet, error) {
	a.FramesTotal++

	if !a.locked {
		if a.pos+2*SoftFrameLen > len(input) {
			return nil, ErrShort
		}
		res := framesync.Correlate(input[a.pos:])
		a.corrWord = res.Best
		a.corrPos = res.Position[res.Best]
		a.corrVal = res.Correlation[res.Best]

		if a.corrVal < CorrelationMin {
			copy(a.aligned, input[a.pos:a.pos+SoftFrameLen])
			a.pos += SoftFrameLen / 4
			a.log.Debug("frame: correlation below minimum, sliding", "corrVal", a.corrVal)
		} else {
			end := a.pos + a.corrPos + SoftFrameLen
			if end > len(input) {
				return nil, ErrShort
			}
			// [pos+corrPos, pos+soft) followed by [pos+soft, end) is a
			// single contiguous range; no separate stitch is needed.
			copy(a.aligned, input[a.pos+a.corrPos:end])
			a.pos += SoftFrameLen + a.corrPos
			fixPacket(a.aligned, a.corrWord)
			a.locked = true
		}
	} else {
		if a.pos+2*SoftFrameLen > len(input) {
			return nil, ErrShort
		}
		copy(a.aligned, input[a.pos:a.pos+SoftFrameLen])
		a.pos += SoftFrameLen
		fixPacket(a.aligned, a.corrWord)
	}

	decoded, ber, err := framesync.Decode(a.aligned)
	if err != nil {
		a.FramingOK = false
		a.locked = false
		return nil, nil
	}
	a.LastBER = ber

	sync := binary.BigEndian.Uint32(decoded[0:4])
	if bits.OnesCount32(sync^asmInverted) < bits.OnesCount32(sync^asmInvertedCmp) {
		for i := range decoded {
			decoded[i] = ^decoded[i]
		}
	}

	ccsds.Derandomize(decoded)
	body := decoded[ccsds.SyncLen:]
	ok, _, berr := ccsds.DecodeBody(body)
	message := body[:ccsds.MessageLen]
	if berr != nil {
		a.FramingOK = false
		a.locked = false
		return nil, nil
	}
	if !ok {
		a.FramingOK = false
		a.locked = false
		a.log.Debug("frame: RS decode failed on one or more interleave branches")
		return nil, nil
	}

	a.FramingOK = true
	a.FramesOK++
	a.CVCDUCount++

	return a.feedPacketZone(message[2:]), nil
}

// Pos reports the number of soft symbols consumed so far.
func (a *Assembler) Pos() int { return a.pos }

// fixPacket applies the Meteor-M2 phase-fix table for the winning
// correlator pattern to a soft frame in place.
func fixPacket(aligned []int8, word int) {
	switch word {
	case 4:
		for i := 0; i+1 < len(aligned); i += 2 {
			aligned[i], aligned[i+1] = aligned[i+1], aligned[i]
		}
	case 5:
		for i := 0; i < len(aligned); i += 2 {
			aligned[i] = negSoft(aligned[i])
		}
	case 6:
		for i := 0; i+1 < len(aligned); i += 2 {
			aligned[i], aligned[i+1] = negSoft(aligned[i+1]), negSoft(aligned[i])
		}
	case 7:
		for i := 1; i < len(aligned); i += 2 {
			aligned[i] = negSoft(aligned[i])
		}
	}
}

func negSoft(b int8) int8 {
	if b == -128 {
		return 127
	}
	return -b
}

// feedPacketZone appends zone (the M-PDU packet zone of one CVCDU,
// following its 2-byte first-header-pointer field) to the pending
// packet buffer and peels off however many complete CCSDS source
// packets it now holds. A packet whose declared length would exceed
// MaxPacketLen is treated as corrupt and the buffer resynchronizes by
// dropping one byte at a time.
func (a *Assembler) feedPacketZone(zone []byte) []Packet {
	a.pzBuf = append(a.pzBuf, zone...)

	var out []Packet
	for {
		if len(a.pzBuf) < 6 {
			break
		}
		apid := binary.BigEndian.Uint16(a.pzBuf[0:2]) & 0x07FF
		dataLen := int(binary.BigEndian.Uint16(a.pzBuf[4:6])) + 1
		total := 6 + dataLen

		if total > MaxPacketLen {
			a.log.Warning("frame: implausible packet length, resynchronizing", "total", total)
			a.pzBuf = a.pzBuf[1:]
			continue
		}
		if len(a.pzBuf) < total {
			break
		}

		out = append(out, Packet{
			APID: apid,
			Data: append([]byte(nil), a.pzBuf[6:total]...),
		})
		a.pzBuf = a.pzBuf[total:]
	}
	return out
}
