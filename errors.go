// errors.go defines public error values for the adess package.

package adess

import "errors"

// Public error values for configuration and per-call failures.
// Errors carry call-specific detail through wrapping; test with errors.Is.
var (
	// ErrConfiguration indicates an invalid alphabet/length/shell
	// combination. It is detected at table-build time and is fatal for the
	// configuration: no codec is produced and retrying cannot help.
	ErrConfiguration = errors.New("adess: invalid configuration")

	// ErrIndexOutOfRange indicates an encode call with an index outside
	// [0, NumSequences). The caller must reduce the message value or the
	// block size; the codec never clamps or wraps.
	ErrIndexOutOfRange = errors.New("adess: index out of range")

	// ErrInfeasibleSequence indicates a decode call with a sequence that is
	// not part of the configured cost shell, either because a symbol is not
	// in the alphabet or because the sequence weight cannot be matched
	// against the count table.
	ErrInfeasibleSequence = errors.New("adess: sequence outside the configured shell")

	// ErrEmptyCodebook indicates a degenerate configuration that enumerates
	// no sequence at all.
	ErrEmptyCodebook = errors.New("adess: empty codebook")
)
