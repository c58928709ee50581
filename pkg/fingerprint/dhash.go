// Package fingerprint derives fixed-length perceptual fingerprints from
// binarized corner strips. Fingerprints are only meaningful relative to each
// other via Hamming distance, never as exact identities.
package fingerprint

import (
	"image"
	"math/bits"
)

// Fingerprint is a difference-hash bit sequence packed into 64-bit words.
type Fingerprint struct {
	words []uint64
	n     int
}

// Len returns the number of bits in the fingerprint.
func (f Fingerprint) Len() int { return f.n }

// Compute builds the difference hash of a binarized strip: for every adjacent
// horizontal pixel pair in the green channel, emit 1 if the left intensity is
// lower than the right, concatenated row-major.
func Compute(strip *image.NRGBA) Fingerprint {
	b := strip.Bounds()
	w := b.Dx()
	h := b.Dy()
	if w < 2 || h < 1 {
		return Fingerprint{}
	}
	n := (w - 1) * h
	f := Fingerprint{words: make([]uint64, (n+63)/64), n: n}
	bit := 0
	for y := 0; y < h; y++ {
		row := strip.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w-1; x++ {
			left := strip.Pix[row+x*4+1]
			right := strip.Pix[row+(x+1)*4+1]
			if left < right {
				f.words[bit/64] |= 1 << uint(bit%64)
			}
			bit++
		}
	}
	return f
}

// Distance returns the Hamming distance between two fingerprints. Length
// mismatch counts every unpaired bit as different, so a missing or
// differently sized fingerprint scores maximally far rather than erroring.
func Distance(a, b Fingerprint) int {
	if a.n != b.n {
		short, long := a, b
		if short.n > long.n {
			short, long = long, short
		}
		return Distance(short, truncate(long, short.n)) + (long.n - short.n)
	}
	d := 0
	for i := range a.words {
		d += bits.OnesCount64(a.words[i] ^ b.words[i])
	}
	return d
}

func truncate(f Fingerprint, n int) Fingerprint {
	out := Fingerprint{words: make([]uint64, (n+63)/64), n: n}
	copy(out.words, f.words)
	if rem := n % 64; rem != 0 {
		out.words[len(out.words)-1] &= (1 << uint(rem)) - 1
	}
	return out
}
