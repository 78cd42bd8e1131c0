// Package adess implements enumerative amplitude shaping codecs for
// arbitrary target distributions.
//
// A shaping codec realizes a bijection between data indices in
// [0, NumSequences) and fixed-length amplitude sequences drawn from a small
// alphabet. Each symbol carries an integer shaping cost, and the codebook
// holds exactly the sequences whose total cost lies in a configured shell.
// Costs quantized from -log2 of a target distribution make the codebook
// approach that distribution; costs proportional to the symbol energy
// recover classic enumerative sphere shaping as described in
// https://doi.org/10.1109/TWC.2019.2951139.
//
// Two codecs are provided:
//
//   - AdEss enumerates against a cost threshold fixed up front, walking
//     sequences from the first amplitude to the last.
//   - RTS is built from a requested bit count instead; its count table
//     grows one cost level at a time until the codebook is large enough,
//     then sequences are walked from the last amplitude to the first.
//
// Both keep exact big-integer counts, so sequence lengths in the hundreds
// with codebooks far beyond 64-bit range work unchanged.
//
// # Usage
//
// Construct a codec once and reuse it; building the count table is the
// expensive step. Encode maps a big-integer index to an amplitude
// sequence, Decode inverts it, and EncodeBits/DecodeBits do the same for
// whole data words as bit slices. AmplitudeDistribution, AverageEnergy and
// ComputeMetrics evaluate a configured codec analytically, without
// enumerating the codebook.
//
// # Concurrency
//
// A constructed codec is immutable. All methods may be called from
// multiple goroutines simultaneously.
package adess
