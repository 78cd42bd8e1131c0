// bits.go maps whole data words onto the codecs' index spaces.

package adess

import (
	"fmt"
	"math/big"

	"github.com/kit-cel/ad-ess/internal/bits"
)

// EncodeBits maps a data word of exactly NumBits bits, most significant
// bit first, to its amplitude sequence. Words of any other length fail
// with ErrIndexOutOfRange.
func (c *AdEss) EncodeBits(word []uint8) ([]int, error) {
	index, err := wordToIndex(word, c.NumBits())
	if err != nil {
		return nil, err
	}
	return c.Encode(index)
}

// DecodeBits maps an amplitude sequence back to its NumBits-bit data word.
// Sequences whose index is not representable in NumBits bits fail with
// ErrIndexOutOfRange.
func (c *AdEss) DecodeBits(sequence []int) ([]uint8, error) {
	index, err := c.Decode(sequence)
	if err != nil {
		return nil, err
	}
	if index.BitLen() > c.NumBits() {
		return nil, fmt.Errorf("%w: sequence index needs more than %d bits", ErrIndexOutOfRange, c.NumBits())
	}
	return bits.FromIndex(index, c.NumBits()), nil
}

// EncodeBits maps a data word of exactly NumBits bits, most significant
// bit first, to its amplitude sequence. Words of any other length fail
// with ErrIndexOutOfRange.
func (c *RTS) EncodeBits(word []uint8) ([]int, error) {
	index, err := wordToIndex(word, c.NumBits())
	if err != nil {
		return nil, err
	}
	return c.Encode(index)
}

// DecodeBits maps an amplitude sequence back to its NumBits-bit data word.
// Sequences whose index is not representable in NumBits bits fail with
// ErrIndexOutOfRange. With RTS these exist whenever NumSequences exceeds
// 2^NumBits; they are valid sequences that no whole data word addresses.
func (c *RTS) DecodeBits(sequence []int) ([]uint8, error) {
	index, err := c.Decode(sequence)
	if err != nil {
		return nil, err
	}
	if index.BitLen() > c.NumBits() {
		return nil, fmt.Errorf("%w: sequence index needs more than %d bits", ErrIndexOutOfRange, c.NumBits())
	}
	return bits.FromIndex(index, c.NumBits()), nil
}

func wordToIndex(word []uint8, numBits int) (*big.Int, error) {
	if len(word) != numBits {
		return nil, fmt.Errorf("%w: word holds %d bits, want %d", ErrIndexOutOfRange, len(word), numBits)
	}
	index, err := bits.ToIndex(word)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexOutOfRange, err)
	}
	return index, nil
}
