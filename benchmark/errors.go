package benchmark

import "errors"

var (
	ErrNoTests          = errors.New("benchmark has no tests")
	ErrNoCycles         = errors.New("cycles must be at least 1")
	ErrMisalignedPasses = errors.New("passes do not contain the same tests in the same order")
)
