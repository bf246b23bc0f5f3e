package form

import "errors"

var (
	// ErrInvalidNumber is returned for number input that is empty, not a
	// finite decimal, or fractional where only whole numbers are allowed.
	ErrInvalidNumber = errors.New("form: invalid number")
	// ErrOutOfRange is returned when a number falls outside min/max.
	ErrOutOfRange = errors.New("form: number out of range")
	// ErrInvalidOption is returned when text input names no select option.
	ErrInvalidOption = errors.New("form: invalid option")
	// ErrInvalidValue is returned when a typed value does not fit the kind.
	ErrInvalidValue = errors.New("form: invalid value")
	// ErrIndexOutOfRange is returned by array operations on a missing index.
	ErrIndexOutOfRange = errors.New("form: array index out of range")
	// ErrNotEditable is returned when a structural or unsupported control is
	// asked to change its value.
	ErrNotEditable = errors.New("form: control is not editable")
)
