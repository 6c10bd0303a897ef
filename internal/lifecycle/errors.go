package lifecycle

import "errors"

var (
	ErrEmptyItems        = errors.New("order must contain at least one item")
	ErrUnknownStatus     = errors.New("status is not part of the order's pipeline")
	ErrInvalidTransition = errors.New("transition must move strictly forward in the pipeline")
	ErrReportNotAllowed  = errors.New("verification report is only accepted during hub verification")
	ErrReportAlreadySet  = errors.New("verification report already attached")
	ErrUnknownPipeline   = errors.New("unknown pipeline template")
)
