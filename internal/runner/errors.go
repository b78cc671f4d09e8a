package runner

import "errors"

// ErrorKind classifies why a command did nothing.
type ErrorKind int

const (
	// NoActiveFile means the command needs the window's file but the window has none.
	NoActiveFile ErrorKind = iota + 1
	// UnsupportedForTarget means the delivery target can't do what the command asks.
	UnsupportedForTarget
	// RegionNotFound means there was no paragraph or program at the cursor.
	RegionNotFound
	// IOFailure means a file could not be written.
	IOFailure
	// DeliveryFailure means the target could not be started or written to.
	DeliveryFailure
)

var (
	ErrNoActiveFile         = errors.New("no active file")
	ErrUnsupportedForTarget = errors.New("unsupported for target")
	ErrRegionNotFound       = errors.New("region not found")
	ErrIOFailure            = errors.New("i/o failure")
	ErrDeliveryFailure      = errors.New("delivery failure")
)

func (k ErrorKind) String() string {
	switch k {
	case NoActiveFile:
		return "NoActiveFile"
	case UnsupportedForTarget:
		return "UnsupportedForTarget"
	case RegionNotFound:
		return "RegionNotFound"
	case IOFailure:
		return "IOFailure"
	case DeliveryFailure:
		return "DeliveryFailure"
	}
	return "Unknown"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case NoActiveFile:
		return ErrNoActiveFile
	case UnsupportedForTarget:
		return ErrUnsupportedForTarget
	case RegionNotFound:
		return ErrRegionNotFound
	case IOFailure:
		return ErrIOFailure
	case DeliveryFailure:
		return ErrDeliveryFailure
	}
	return nil
}

// Error is the failure of a command. Msg is what the user is shown.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	var errs []error
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
