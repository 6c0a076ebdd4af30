package utils

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest        = errors.New("invalid trip request")
	ErrRetrievalDegraded     = errors.New("retrieval degraded")
	ErrTransientGeneration   = errors.New("transient generation failure")
	ErrFatalGeneration       = errors.New("fatal generation failure")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrSchemaValidation      = errors.New("itinerary schema validation failed")
	ErrItineraryUnproducible = errors.New("itinerary unproducible")
	ErrExportFailure         = errors.New("document export failed")
)

// PipelineError wraps one of the sentinels above with the pipeline stage
// that produced it and a caller-safe detail message.
type PipelineError struct {
	Stage  string
	Kind   error
	Detail string
}

func (e *PipelineError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Stage, e.Kind, e.Detail)
}

func (e *PipelineError) Unwrap() error {
	return e.Kind
}

func NewPipelineError(stage string, kind error, detail string) *PipelineError {
	return &PipelineError{Stage: stage, Kind: kind, Detail: detail}
}

// StageOf returns the failed stage name if err carries one.
func StageOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

// DetailOf returns the caller-safe detail if err carries one.
func DetailOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Detail
	}
	return ""
}
