package unmix

import (
	"errors"
	"fmt"
)

// InputError marks input rejected before any parallel work begins:
// unreadable sources, invalid band indices, shape mismatches. Fail-fast;
// retrying without changing the inputs cannot succeed.
type InputError struct {
	msg string
}

func NewInputError(format string, args ...interface{}) *InputError {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

func (e *InputError) Error() string {
	return "invalid input: " + e.msg
}

// IsInputError reports whether err is (or wraps) an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// ResourceError marks a failure to acquire or release a buffer or raster
// resource. Fatal for the run.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource failure during %s: %v", e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// ErrIncompleteRaster is returned when the worker pool drains without
// every row having been assembled. A truncated raster is never exposed.
var ErrIncompleteRaster = errors.New("unmixing produced an incomplete raster")
