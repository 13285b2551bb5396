package common

import (
	"errors"
	"fmt"
)

var (
	ErrMissingBaseline      = errors.New("missing device_count=1 baseline")
	ErrInsufficientData     = errors.New("per_device_timings absent")
	ErrEmptyGroup           = errors.New("no run records in group")
	ErrMixedGroup           = errors.New("run records span several (model, batch_size) groups")
	ErrDuplicateDeviceCount = errors.New("duplicate device_count in group")
)

// ParseError reports a trial record that could not be read. It is raised per record
// and never aborts loading of the remaining records.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type MissingBaselineError struct {
	Group GroupKey
}

func (e *MissingBaselineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Group, ErrMissingBaseline)
}

func (e *MissingBaselineError) Is(target error) bool {
	return target == ErrMissingBaseline
}
