/*
DESCRIPTION
  errors.go exports the decoder package's error taxonomy as sentinel
  values, mirroring the exported Err* sentinels of the teacher's
  container/mts package.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package decoder

import "github.com/pkg/errors"

// ErrAlloc names the failed-allocation kind of the taxonomy (e.g.
// sizing a channel image plane). No function in this package returns
// it.
var ErrAlloc = errors.New("decoder: allocation failed")

// ErrParam names the invalid-parameter kind of the taxonomy: a nil or
// malformed input, an unknown APID, or any other caller-supplied
// argument the decoder cannot act on. No function in this package
// returns it; ErrUnsupp, defined in decoder.go and returned by New, is
// the narrower unsupported-spacecraft case of this same kind, and
// raster reports a bad APID or position with raster.ErrParam.
var ErrParam = errors.New("decoder: invalid parameter")

// ErrDataProc names a stream-level (not per-frame) data processing
// failure. Exec does not return it: per-frame failures are absorbed
// into Stats.FramingOK, and no stream-level failure path exists.
var ErrDataProc = errors.New("decoder: unrecoverable data processing failure")

// ErrEOF is returned by callers driving Exec over a finite input when
// the input is exhausted before a full soft frame remains; it is not
// returned by Exec itself, which treats a short remainder as "stop and
// report symbols consumed" rather than an error (see frame.ErrShort).
var ErrEOF = errors.New("decoder: end of input")
