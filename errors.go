package multiblob

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is the error returned when reading or removing a blob that is not in the store.
	// Has, Size, and Meta never return it: for them absence is a result, not an error.
	ErrNotFound = errors.New("not found")

	// ErrMalformedRef is the error returned for refs that cannot be decoded.
	ErrMalformedRef = errors.New("malformed ref")

	// ErrMissingRef is the error returned by Get when GetOptions carries no usable ref.
	ErrMissingRef = errors.New("ref is mandatory")

	// ErrIncorrectLength is wrapped by LengthError.
	ErrIncorrectLength = errors.New("incorrect blob length")

	// ErrHashMismatch is wrapped by MismatchError.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrStagingWrite and ErrRename identify the phase in which a CommitError occurred.
	ErrStagingWrite = errors.New("could not write staging file")
	ErrRename       = errors.New("could not move staging file into place")

	// ErrEmptyListing is the error returned by Ls when neither Old nor Live is requested.
	ErrEmptyListing = errors.New("listing with neither old nor live entries is empty")

	// ErrUnknownAlg is the error returned for hash algorithms that have not been registered.
	ErrUnknownAlg = errors.New("unknown hash algorithm")

	// ErrWriterClosed is the error returned by writes after Close or Abort.
	ErrWriterClosed = errors.New("writer closed")
)

// LengthError is the error returned by Get
// when a blob's size violates the Size or Max of GetOptions.
// It wraps ErrIncorrectLength.
type LengthError struct {
	Ref       Ref
	Size, Max *int64
	Actual    int64
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("incorrect blob length, requested: %s, max: %s, file was: %d for blob: %s", optInt(e.Size), optInt(e.Max), e.Actual, e.Ref)
}

func (e *LengthError) Unwrap() error {
	return ErrIncorrectLength
}

func optInt(n *int64) string {
	if n == nil {
		return "none"
	}
	return strconv.FormatInt(*n, 10)
}

// MismatchError is the error returned when committing a write
// whose content does not hash to the ref the writer expected.
// It wraps ErrHashMismatch.
type MismatchError struct {
	Want, Got Ref
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("actual hash: %s did not match expected hash: %s", e.Got, e.Want)
}

func (e *MismatchError) Unwrap() error {
	return ErrHashMismatch
}

// CommitError reports an I/O failure while writing a blob.
// Kind is ErrStagingWrite or ErrRename.
// errors.Is matches both Kind and the underlying error.
type CommitError struct {
	Kind error
	Path string
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Path, e.Err)
}

func (e *CommitError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
