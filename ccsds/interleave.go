/*
DESCRIPTION
  interleave.go applies the CCSDS depth-4 Reed-Solomon interleaving to
  a CVCDU frame body: four codewords are carried byte-interleaved
  (stride 4) across the 1,020-byte body, each independently
  RS-protected.

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

import "github.com/pkg/errors"

// InterleaveDepth is the number of RS codewords multiplexed, stride 4,
// across a CVCDU body.
const InterleaveDepth = 4

// BodyLen is the size, in bytes, of an interleaved CVCDU body (4
// codewords of 255 bytes each).
const BodyLen = InterleaveDepth * rsN

// MessageLen is the size, in bytes, of the message portion of an
// interleaved CVCDU body (the 4 codewords' data symbols, excluding
// their interleaved RS parity, which is transmitted but is not part of
// the M-PDU packet zone).
const MessageLen = InterleaveDepth * rsK

// ErrBodyLen is returned when DecodeBody is given a body of the wrong
// length.
var ErrBodyLen = errors.New("ccsds: frame body must be 1020 bytes")

// DecodeBody deinterleaves body (BodyLen bytes, stride InterleaveDepth)
// into InterleaveDepth codewords, RS-decodes each in place, and
// re-interleaves the corrected bytes back into body. It reports
// ok=true only if every codeword decoded successfully; corrected holds
// the total number of symbol errors fixed across all codewords decoded
// so far (valid even when ok is false, for diagnostics).
func DecodeBody(body []byte) (ok bool, corrected int, err error) {
	if len(body) != BodyLen {
		return false, 0, ErrBodyLen
	}

	ok = true
	for branch := 0; branch < InterleaveDepth; branch++ {
		cw := make([]byte, rsN)
		for i := range cw {
			cw[i] = body[i*InterleaveDepth+branch]
		}

		n, derr := Decode(cw)
		if derr != nil {
			ok = false
			continue
		}
		corrected += n
		for i := range cw {
			body[i*InterleaveDepth+branch] = cw[i]
		}
	}
	return ok, corrected, nil
}
