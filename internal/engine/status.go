package engine

import (
	"errors"
	"fmt"
)

// Status is the process exit code the engine reports.
type Status int

const (
	Success             Status = 0
	MissingArgument     Status = 1
	ReadError           Status = 2
	InvalidArgument     Status = 4
	NotOverwritingError Status = 15
	CantWriteError      Status = 16
	OutOfMemoryError    Status = 17
	EncodeError         Status = 25
	WrongInputColorType Status = 26
	TooLargeFile        Status = 98
	TooLowQuality       Status = 99
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case MissingArgument:
		return "missing argument"
	case ReadError:
		return "read error"
	case InvalidArgument:
		return "invalid argument"
	case NotOverwritingError:
		return "not overwriting"
	case CantWriteError:
		return "can't write"
	case OutOfMemoryError:
		return "out of memory"
	case EncodeError:
		return "encode error"
	case WrongInputColorType:
		return "wrong input color type"
	case TooLargeFile:
		return "too large"
	case TooLowQuality:
		return "quality too low"
	default:
		return fmt.Sprintf("status %d", int(s))
	}
}

// Error pairs a failure with the status it maps to.
type Error struct {
	Status Status
	Err    error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(status Status, format string, args ...any) error {
	return &Error{Status: status, Err: fmt.Errorf(format, args...)}
}

// StatusOf returns the status carried by err, Success for nil, and
// ReadError for errors that carry none.
func StatusOf(err error) Status {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return ReadError
}
