package adess_test

import (
	"fmt"
	"math/big"

	adess "github.com/kit-cel/ad-ess"
)

func Example() {
	alphabet, err := adess.NewASKAlphabet([]int{0, 1, 3, 6})
	if err != nil {
		panic(err)
	}
	codec, err := adess.New(7, 4, alphabet)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%d bits per %d amplitudes\n", codec.NumBits(), codec.SequenceLength())

	seq, err := codec.Encode(big.NewInt(25))
	if err != nil {
		panic(err)
	}
	index, err := codec.Decode(seq)
	if err != nil {
		panic(err)
	}
	fmt.Println(index)
	// Output:
	// 6 bits per 4 amplitudes
	// 25
}

func ExampleNewRTS() {
	alphabet, err := adess.NewASKAlphabet([]int{0, 1, 3, 6})
	if err != nil {
		panic(err)
	}
	codec, err := adess.NewRTS(4, 4, alphabet)
	if err != nil {
		panic(err)
	}
	fmt.Println(codec.NumSequences(), codec.NumBits())

	seq, err := codec.Encode(big.NewInt(4))
	if err != nil {
		panic(err)
	}
	fmt.Println(seq)
	// Output:
	// 19 4
	// [3 1 1 1]
}

func ExampleWeightsForDistribution() {
	weights, err := adess.WeightsForDistribution([]float64{0.5, 0.25, 0.25}, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(weights)
	// Output: [0 1 1]
}
