package errors

import "errors"

// Domain errors
var (
	// Scan errors
	ErrInvalidTarget      = errors.New("invalid target URL")
	ErrProbeTimeout       = errors.New("probe exceeded its time budget")
	ErrProbePanic         = errors.New("probe panicked")
	ErrNoProbesRegistered = errors.New("no probes registered")

	// Report errors
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrEmptyReport       = errors.New("report has not been assembled")

	// Perf analysis errors
	ErrNoSamples       = errors.New("no samples found in results file")
	ErrMalformedResult = errors.New("malformed load-test result")
)
