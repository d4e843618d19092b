package dispatcher_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xll-gen/dispatcher"
)

func TestError_Message(t *testing.T) {
	cause := errors.New("exception occurred")
	tests := []struct {
		err  *dispatcher.Error
		want string
	}{
		{&dispatcher.Error{Kind: dispatcher.KindEngineStart}, "excel engine failed to start"},
		{&dispatcher.Error{Kind: dispatcher.KindWorkbookOpen, Workbook: `D:\Q1.xlsx`, Err: cause},
			`can't open workbook: D:\Q1.xlsx: exception occurred`},
		{&dispatcher.Error{Kind: dispatcher.KindWorksheetOpen, Worksheet: "Sheet9"}, "can't open worksheet: Sheet9"},
		{&dispatcher.Error{Kind: dispatcher.KindWrite, Cell: true, Row: 3, Col: 4, Value: 42},
			"failed to write value: 42 to row: 3 column: 4"},
		{&dispatcher.Error{Kind: dispatcher.KindWrite, Cell: true, Value: "x"},
			"failed to write value: x to row: 0 column: 0"},
		{&dispatcher.Error{Kind: dispatcher.KindWrite, Worksheet: "Sheet1"}, "failed to update worksheet: Sheet1"},
		{&dispatcher.Error{Kind: dispatcher.KindRead, Cell: true, Row: 12, Col: 4},
			"failed to read value from row: 12 column: 4"},
		{&dispatcher.Error{Kind: dispatcher.KindRead, Worksheet: "Sheet1"}, "failed to read worksheet: Sheet1"},
		{&dispatcher.Error{Kind: dispatcher.KindNoWorkspace},
			"you must open a workbook and a worksheet before you can use it"},
		{&dispatcher.Error{Kind: dispatcher.KindSave, Workbook: "Q1.xlsx"}, "save failed: Q1.xlsx"},
		{&dispatcher.Error{}, "excel dispatcher error"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestError_Is(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("report: %w", &dispatcher.Error{Kind: dispatcher.KindSave, Err: cause})

	if !errors.Is(err, dispatcher.ErrSave) {
		t.Error("errors.Is(err, ErrSave) = false")
	}
	if errors.Is(err, dispatcher.ErrWrite) {
		t.Error("errors.Is(err, ErrWrite) = true")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable")
	}
	if got := dispatcher.KindOf(err); got != dispatcher.KindSave {
		t.Errorf("KindOf = %v", got)
	}
	if got := dispatcher.KindOf(cause); got != dispatcher.KindUnknown {
		t.Errorf("KindOf(plain) = %v", got)
	}
	if got := dispatcher.KindNoWorkspace.String(); got != "no workspace" {
		t.Errorf("String = %q", got)
	}
}
