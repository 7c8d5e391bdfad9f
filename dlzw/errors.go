package dlzw

import "errors"

// Codec errors
var (
	// ErrFormat is returned when the input is not a dlzw stream: the magic
	// line is wrong or the payload is not a whole number of codes.
	ErrFormat = errors.New("dlzw: not a dlzw stream")

	// ErrDimensions is returned for a missing or malformed dimension line.
	ErrDimensions = errors.New("dlzw: invalid dimension line")

	// ErrDesync is returned when the code stream does not rebuild exactly
	// the number of samples the header declares. The wrapped error names
	// the stage that noticed.
	ErrDesync = errors.New("dlzw: code stream out of sync with image dimensions")

	// ErrVerify is returned by Encode with Options.Verify when the encoded
	// stream does not decode back to the input.
	ErrVerify = errors.New("dlzw: verification failed")
)
