/*
DESCRIPTION
  image.go implements the per-APID channel image planes the JPEG MCU
  decoder paints into: six fixed-width, grow-only-in-height grayscale
  buffers, one per Meteor-M2 instrument channel (APID 64..69).

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package raster implements the per-APID grayscale channel image
// planes. It is named raster, rather than image, to avoid shadowing
// the standard library's image package at import sites.
package raster

import "github.com/pkg/errors"

// MinAPID/MaxAPID bound the Meteor-M2 instrument channels this image
// addresses; channel index = apid - MinAPID.
const (
	MinAPID     = 64
	MaxAPID     = 69
	NumChannels = MaxAPID - MinAPID + 1
)

// ErrParam is returned for an out-of-range APID or pixel position.
var ErrParam = errors.New("raster: invalid apid or position")

// Image holds six fixed-width grayscale channel planes that grow only
// in height, in whole rows, as MCU rows arrive.
type Image struct {
	width  int
	height int
	planes [NumChannels][]byte
}

// New returns an Image of the given fixed width and zero height.
func New(width int) *Image {
	return &Image{width: width}
}

// Width reports the fixed channel width.
func (img *Image) Width() int { return img.width }

// Height reports the current channel height, common to all channels.
func (img *Image) Height() int { return img.height }

// Bounds reports the current (width, height) of the given APID's
// channel plane.
func (img *Image) Bounds(apid uint16) (width, height int, err error) {
	if _, err := channelIndex(apid); err != nil {
		return 0, 0, err
	}
	return img.width, img.height, nil
}

// SetHeight grows every channel plane to height h, zero-filling the
// newly added rows. It is a no-op if h is not larger than the current
// height; planes are never shrunk.
func (img *Image) SetHeight(h int) {
	if h <= img.height {
		return
	}
	size := img.width * h
	for c := range img.planes {
		grown := make([]byte, size)
		copy(grown, img.planes[c])
		img.planes[c] = grown
	}
	img.height = h
}

// GetPx reads one pixel from the given APID's channel plane at flat
// offset pos (= x + y*width).
func (img *Image) GetPx(apid uint16, pos int) (byte, error) {
	c, err := channelIndex(apid)
	if err != nil {
		return 0, err
	}
	if pos < 0 || pos >= len(img.planes[c]) {
		return 0, ErrParam
	}
	return img.planes[c][pos], nil
}

// SetPx writes one pixel into the given APID's channel plane at flat
// offset pos (= x + y*width). The last write to a given position
// wins; callers are expected to write pixels in packet arrival order.
func (img *Image) SetPx(apid uint16, pos int, val byte) error {
	c, err := channelIndex(apid)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(img.planes[c]) {
		return ErrParam
	}
	img.planes[c][pos] = val
	return nil
}

func channelIndex(apid uint16) (int, error) {
	if apid < MinAPID || apid > MaxAPID {
		return 0, ErrParam
	}
	return int(apid) - MinAPID, nil
}
