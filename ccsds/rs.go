/*
DESCRIPTION
  rs.go implements the CCSDS (255,223) Reed-Solomon code used to
  protect each CVCDU: t=16 symbol errors correctable per codeword,
  GF(2^8) with primitive polynomial x^8+x^7+x^2+x+1, generator
  alpha=0x02, first consecutive root alpha^112, root stride 11.

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

// Reed-Solomon (255,223) parameters.
const (
	rsN        = 255
	rsK        = 223
	rsNRoots   = rsN - rsK // 32 parity symbols, t=16
	rsFCR      = 112       // first consecutive root, as a power of alpha
	rsStride   = 11        // root spacing (b)
	primPoly   = 0x187      // x^8+x^7+x^2+x+1
)

var (
	alphaTo [256]byte // alphaTo[i] = alpha^i, i in [0,254]; alphaTo[255] unused (0)
	indexOf [256]int  // indexOf[alphaTo[i]] = i; indexOf[0] = -1
	genPoly [rsNRoots + 1]byte
	invStride int // multiplicative inverse of rsStride mod 255
)

func init() {
	reg := 1
	for i := 0; i < rsN; i++ {
		alphaTo[i] = byte(reg)
		indexOf[byte(reg)] = i
		reg <<= 1
		if reg&0x100 != 0 {
			reg ^= primPoly
		}
	}
	indexOf[0] = -1

	g := []byte{1}
	for i := 0; i < rsNRoots; i++ {
		root := alphaTo[(rsFCR+i*rsStride)%rsN]
		g = polyMulLinear(g, root)
	}
	copy(genPoly[:], g)

	for k := 1; k < rsN; k++ {
		if (rsStride*k)%rsN == 1 {
			invStride = k
			break
		}
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return alphaTo[(indexOf[a]+indexOf[b])%rsN]
}

func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return alphaTo[((indexOf[a]-indexOf[b])%rsN+rsN)%rsN]
}

func powAlpha(e int) byte {
	e = ((e % rsN) + rsN) % rsN
	return alphaTo[e]
}

// polyMulLinear multiplies ascending-order polynomial g by the linear
// factor (x + root), returning a polynomial one degree higher.
func polyMulLinear(g []byte, root byte) []byte {
	out := make([]byte, len(g)+1)
	for k := range out {
		var a, b byte
		if k-1 >= 0 && k-1 < len(g) {
			a = g[k-1]
		}
		if k < len(g) {
			b = gfMul(root, g[k])
		}
		out[k] = a ^ b
	}
	return out
}

// Codeword is one (255,223) interleave branch: 223 data bytes followed
// by 32 parity bytes, in transmission order.
type Codeword = [rsN]byte

// ErrUncorrectable is returned when a codeword holds more errors than
// the code can correct (deg(lambda) != number of Chien roots found).
var ErrUncorrectable = errors.New("ccsds: reed-solomon codeword uncorrectable")

// EncodeParity computes the 32 parity bytes for a 223-byte message
// using the generator polynomial, via systematic LFSR division. It is
// provided for test fixture construction; production decode never
// calls it.
func EncodeParity(msg []byte) []byte {
	parity := make([]byte, rsNRoots)
	// msg[len(msg)-1] is the highest-degree data coefficient (see
	// toInternal), so it is fed into the divider first.
	for i := len(msg) - 1; i >= 0; i-- {
		feedback := msg[i] ^ parity[rsNRoots-1]
		for j := rsNRoots - 1; j > 0; j-- {
			parity[j] = parity[j-1] ^ gfMul(feedback, genPoly[j])
		}
		parity[0] = gfMul(feedback, genPoly[0])
	}
	return parity
}

// toInternal reorders a transmission-order codeword (data, then
// parity) into ascending coefficient-of-x^i order used internally:
// parity occupies the low-degree slots, data the high-degree slots.
func toInternal(cw []byte) []byte {
	internal := make([]byte, rsN)
	copy(internal[0:rsNRoots], cw[rsK:rsN])
	copy(internal[rsNRoots:], cw[0:rsK])
	return internal
}

func fromInternal(internal []byte) []byte {
	cw := make([]byte, rsN)
	copy(cw[rsK:rsN], internal[0:rsNRoots])
	copy(cw[0:rsK], internal[rsNRoots:])
	return cw
}

// syndromes computes S_j = c(alpha^(fcr+j*stride)) for j=0..nRoots-1.
func syndromes(internal []byte) ([]byte, bool) {
	s := make([]byte, rsNRoots)
	allZero := true
	for j := 0; j < rsNRoots; j++ {
		root := powAlpha(rsFCR + j*rsStride)
		var acc byte
		x := byte(1)
		for i := 0; i < rsN; i++ {
			acc ^= gfMul(internal[i], x)
			x = gfMul(x, root)
		}
		s[j] = acc
		if acc != 0 {
			allZero = false
		}
	}
	return s, allZero
}

// berlekampMassey finds the shortest LFSR (error locator polynomial,
// ascending coefficient order, constant term 1) generating synd.
func berlekampMassey(synd []byte) []byte {
	n := len(synd)
	c := make([]byte, n+1)
	b := make([]byte, n+1)
	c[0], b[0] = 1, 1
	l, m := 0, 1
	bb := byte(1)

	for i := 0; i < n; i++ {
		delta := synd[i]
		for j := 1; j <= l; j++ {
			delta ^= gfMul(c[j], synd[i-j])
		}
		if delta == 0 {
			m++
			continue
		}
		t := make([]byte, len(c))
		copy(t, c)
		coef := gfDiv(delta, bb)
		for j := 0; j < len(b); j++ {
			if j+m < len(c) {
				c[j+m] ^= gfMul(coef, b[j])
			}
		}
		if 2*l <= i {
			l = i + 1 - l
			copy(b, t)
			bb = delta
			m = 1
		} else {
			m++
		}
	}
	return c[:l+1]
}

func polyEval(p []byte, x byte) byte {
	var acc byte
	xi := byte(1)
	for _, coef := range p {
		acc ^= gfMul(coef, xi)
		xi = gfMul(xi, x)
	}
	return acc
}

func polyDerivative(p []byte) []byte {
	d := make([]byte, (len(p)+1)/2)
	for i := 1; i < len(p); i += 2 {
		d[(i-1)/2] = p[i]
	}
	return d
}

// polyMul multiplies two ascending-order polynomials.
func polyMul(a, b []byte) []byte {
	out := make([]byte, len(a)+len(b)-1)
	for i, ai := range a {
		if ai == 0 {
			continue
		}
		for j, bj := range b {
			out[i+j] ^= gfMul(ai, bj)
		}
	}
	return out
}

// decodeCodeword corrects up to t=16 symbol errors in internal (in
// ascending coefficient order) in place, returning the number of
// errors corrected, or an error if the codeword is uncorrectable.
func decodeCodeword(internal []byte) (int, error) {
	synd, clean := syndromes(internal)
	if clean {
		return 0, nil
	}

	lambda := berlekampMassey(synd)
	degree := len(lambda) - 1

	type errLoc struct {
		pos  int
		zRoot byte
	}
	var errs []errLoc
	for k := 0; k < rsN; k++ {
		z := powAlpha(-k)
		if polyEval(lambda, z) == 0 {
			pos := (k * invStride) % rsN
			errs = append(errs, errLoc{pos: pos, zRoot: z})
		}
	}
	if len(errs) != degree {
		return 0, ErrUncorrectable
	}

	sx := make([]byte, rsNRoots)
	copy(sx, synd)
	omegaFull := polyMul(lambda, sx)
	omega := omegaFull
	if len(omega) > rsNRoots {
		omega = omega[:rsNRoots]
	}
	lambdaPrime := polyDerivative(lambda)

	for _, e := range errs {
		num := polyEval(omega, e.zRoot)
		// lambdaPrime's coefficients are lambda's odd-index terms
		// compacted down by half their degree, so it represents
		// Lambda'(x) as a polynomial in x^2, not x; evaluate it at
		// zRoot^2 accordingly.
		den := polyEval(lambdaPrime, gfMul(e.zRoot, e.zRoot))
		if den == 0 {
			return 0, ErrUncorrectable
		}
		// The syndromes are indexed from locator exponent 0, so Forney's
		// magnitude carries a factor X_i = 1/zRoot.
		eVal := gfDiv(gfDiv(num, den), e.zRoot)
		eVal = gfMul(eVal, powAlpha(-rsFCR*e.pos))
		internal[e.pos] ^= eVal
	}

	if synd2, ok := syndromes(internal); !ok {
		_ = synd2
		return 0, ErrUncorrectable
	}
	return len(errs), nil
}

// Decode corrects up to 16 symbol errors in a transmission-order (255,223)
// codeword (223 data bytes then 32 parity bytes) in place, returning the
// number of symbols corrected. It returns ErrUncorrectable, leaving cw
// unmodified, if the codeword holds more errors than the code can
// correct.
func Decode(cw []byte) (int, error) {
	if len(cw) != rsN {
		return 0, errors.Errorf("ccsds: codeword must be %d bytes, got %d", rsN, len(cw))
	}
	internal := toInternal(cw)
	n, err := decodeCodeword(internal)
	if err != nil {
		return 0, err
	}
	copy(cw, fromInternal(internal))
	return n, nil
}
