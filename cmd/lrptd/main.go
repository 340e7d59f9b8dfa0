/*
DESCRIPTION
  Lrptd is a bare bones program for decoding a recorded Meteor-M2 LRPT
  soft-symbol capture into its channel image planes.

AUTHOR
  ported for liblrpt

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package lrptd reads a raw int8 soft-symbol file and decodes it with
// the liblrpt pipeline, logging per-block counters as it goes. It does
// not write the resulting image planes to disk; that post-processing
// step is left to a caller of the decoder package directly.
package main

import (
	"flag"
	"os"

	"github.com/ausocean/utils/logging"
	"github.com/dvdesolve/liblrpt/decoder"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logging related constants.
const (
	logPath      = "/var/log/lrptd/lrptd.log"
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Debug
	logSuppress  = true
)

// blockSize is the number of soft symbols read per Exec call. It is
// unrelated to frame.SoftFrameLen; Exec internally consumes whatever
// whole soft frames fit in what it's given and reports how much it
// used, so any block size larger than two soft frames works.
const blockSize = 1 << 20

func main() {
	inPtr := flag.String("in", "", "Path to a raw int8 soft-symbol capture file.")
	widthPtr := flag.Int("width", 1568, "Channel image width, in pixels.")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	l := logging.New(logVerbosity, fileLog, logSuppress)

	if *inPtr == "" {
		l.Fatal("no input file given, use -in")
	}

	f, err := os.Open(*inPtr)
	if err != nil {
		l.Fatal("could not open input file", "error", err)
	}
	defer f.Close()

	dec, err := decoder.New(decoder.Config{
		Spacecraft: decoder.MeteorM2,
		Log:        l,
		ImageWidth: *widthPtr,
	})
	if err != nil {
		l.Fatal("could not construct decoder", "error", err)
	}

	run(f, dec, l)
}

// run drives dec over f until EOF, logging Stats after every non-empty
// block read.
func run(f *os.File, dec *decoder.Decoder, l logging.Logger) {
	var carry []int8

	for {
		buf := make([]byte, blockSize)
		n, rerr := f.Read(buf)
		if n > 0 {
			symbols := append(carry, bytesToSymbols(buf[:n])...)
			carry = nil

			used, err := dec.Exec(symbols)
			if err != nil {
				l.Error("decode error", "error", err)
				return
			}
			carry = append(carry, symbols[used:]...)

			st := dec.Stats()
			l.Info("block decoded",
				"framing_ok", st.FramingOK,
				"frames_total", st.FramesTotal,
				"frames_ok", st.FramesOK,
				"cvcdu_count", st.CVCDUCount,
				"packets_count", st.PacketsCount,
				"signal_quality", st.SignalQuality,
			)
		}
		if rerr != nil {
			break
		}
	}
}

// bytesToSymbols reinterprets a raw byte slice as signed int8 soft
// symbols, the on-disk representation this CLI expects.
func bytesToSymbols(b []byte) []int8 {
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}
	return out
}
