package qprep

import "fmt"

// A ShapeError reports malformed or inconsistent tensor shapes.
type ShapeError struct {
	s string
}

func (e *ShapeError) Error() string { return e.s }

func shapeErrorf(format string, args ...any) *ShapeError {
	return &ShapeError{s: fmt.Sprintf(format, args...)}
}

// A DimensionError reports a boundary vector whose length does not match the
// bond dimension.
type DimensionError struct {
	s string
}

func (e *DimensionError) Error() string { return e.s }

func dimensionErrorf(format string, args ...any) *DimensionError {
	return &DimensionError{s: fmt.Sprintf(format, args...)}
}

// A NumericalError reports a precision failure, such as an isometry whose
// columns are not orthonormal within tolerance.
type NumericalError struct {
	s string
}

func (e *NumericalError) Error() string { return e.s }

func numericalErrorf(format string, args ...any) *NumericalError {
	return &NumericalError{s: fmt.Sprintf(format, args...)}
}
