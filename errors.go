package dispatcher

import (
	"errors"
	"fmt"
)

// Kind classifies a dispatcher failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindEngineStart
	KindWorkbookOpen
	KindWorksheetOpen
	KindWrite
	KindRead
	KindNoWorkspace
	KindSave
)

func (k Kind) String() string {
	switch k {
	case KindEngineStart:
		return "engine start"
	case KindWorkbookOpen:
		return "workbook open"
	case KindWorksheetOpen:
		return "worksheet open"
	case KindWrite:
		return "write"
	case KindRead:
		return "read"
	case KindNoWorkspace:
		return "no workspace"
	case KindSave:
		return "save"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of the same Kind.
var (
	ErrEngineStart   = &Error{Kind: KindEngineStart}
	ErrWorkbookOpen  = &Error{Kind: KindWorkbookOpen}
	ErrWorksheetOpen = &Error{Kind: KindWorksheetOpen}
	ErrWrite         = &Error{Kind: KindWrite}
	ErrRead          = &Error{Kind: KindRead}
	ErrNoWorkspace   = &Error{Kind: KindNoWorkspace}
	ErrSave          = &Error{Kind: KindSave}
)

var (
	errNoWorkbook  = errors.New("no workbook open")
	errNoWorksheet = errors.New("no worksheet open")
	errClosed      = errors.New("session closed")
)

// Error is returned by every failing Dispatcher operation. It records the
// kind of failure, the workspace context known at the time, and the
// underlying cause reported by the engine.
type Error struct {
	Kind      Kind
	Workbook  string
	Worksheet string

	// Cell is set when Row, Col and Value locate the failure.
	Cell     bool
	Row, Col int
	Value    any
	Err      error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindEngineStart:
		msg = "excel engine failed to start"
	case KindWorkbookOpen:
		msg = "can't open workbook: " + e.Workbook
	case KindWorksheetOpen:
		msg = "can't open worksheet: " + e.Worksheet
	case KindWrite:
		if e.Cell {
			msg = fmt.Sprintf("failed to write value: %v to row: %d column: %d", e.Value, e.Row, e.Col)
		} else {
			msg = "failed to update worksheet: " + e.Worksheet
		}
	case KindRead:
		if e.Cell {
			msg = fmt.Sprintf("failed to read value from row: %d column: %d", e.Row, e.Col)
		} else {
			msg = "failed to read worksheet: " + e.Worksheet
		}
	case KindNoWorkspace:
		msg = "you must open a workbook and a worksheet before you can use it"
	case KindSave:
		msg = "save failed"
		if e.Workbook != "" {
			msg += ": " + e.Workbook
		}
	default:
		msg = "excel dispatcher error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
