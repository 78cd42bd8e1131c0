// Package bits converts between data words, stored as bit slices with the
// most significant bit first, and the big-integer indices the shaping
// codecs enumerate.
package bits

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrBadBit is returned when a bit slice holds a value other than 0 or 1.
var ErrBadBit = errors.New("bits: bit value out of range")

// ToIndex packs a bit slice into an index, most significant bit first. An
// empty slice packs to 0.
func ToIndex(word []uint8) (*big.Int, error) {
	index := new(big.Int)
	for i, b := range word {
		if b > 1 {
			return nil, fmt.Errorf("%w: word[%d] = %d", ErrBadBit, i, b)
		}
		index.Lsh(index, 1)
		if b == 1 {
			index.SetBit(index, 0, 1)
		}
	}
	return index, nil
}

// FromIndex unpacks an index into a bit slice of the given width, most
// significant bit first. Bits of the index above the width are dropped;
// callers bound the index first.
func FromIndex(index *big.Int, width int) []uint8 {
	word := make([]uint8, width)
	for i := 0; i < width; i++ {
		word[width-1-i] = uint8(index.Bit(i))
	}
	return word
}
