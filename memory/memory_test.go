package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/xll-gen/dispatcher"
)

func startSheet(t *testing.T, e *Engine, path, sheet string) dispatcher.Worksheet {
	t.Helper()
	s, err := e.Start(context.Background(), dispatcher.Settings{})
	if err != nil {
		t.Fatal(err)
	}
	wb, err := s.OpenWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	ws, err := wb.Worksheet(sheet)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestSheet_UsedRange(t *testing.T) {
	e := New()
	e.AddWorkbook("book.xlsx", "Sheet1")
	ws := startSheet(t, e, "book.xlsx", "Sheet1")

	rows, _ := ws.UsedRows()
	cols, _ := ws.UsedCols()
	if rows != 1 || cols != 1 {
		t.Errorf("empty sheet used range = %dx%d, want 1x1", rows, cols)
	}

	ws.SetCell(4, 2, "a")
	ws.SetCell(10, 5, 1.5)
	rows, _ = ws.UsedRows()
	cols, _ = ws.UsedCols()
	if rows != 7 || cols != 4 {
		t.Errorf("used range = %dx%d, want 7x4", rows, cols)
	}

	ws.SetCell(10, 5, nil)
	rows, _ = ws.UsedRows()
	if rows != 1 {
		t.Errorf("used rows after clearing = %d, want 1", rows)
	}
	if v, _ := ws.Cell(10, 5); v != nil {
		t.Errorf("cleared cell = %v", v)
	}
}

func TestSheet_Bounds(t *testing.T) {
	e := New()
	e.AddWorkbook("book.xlsx", "Sheet1")
	ws := startSheet(t, e, "book.xlsx", "Sheet1")

	for _, c := range [][2]int{{0, 1}, {1, 0}, {MaxRows + 1, 1}, {1, MaxCols + 1}, {-3, -3}} {
		if err := ws.SetCell(c[0], c[1], "x"); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("SetCell(%d, %d) = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
		if _, err := ws.Cell(c[0], c[1]); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Cell(%d, %d) = %v, want ErrOutOfBounds", c[0], c[1], err)
		}
	}
	if err := ws.AutoFit(MaxCols + 1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("AutoFit = %v, want ErrOutOfBounds", err)
	}
}

func TestEngine_Lookup(t *testing.T) {
	e := New()
	e.AddWorkbook("book.xlsx", "A", "B")
	s, err := e.Start(context.Background(), dispatcher.Settings{Visible: true})
	if err != nil {
		t.Fatal(err)
	}
	if !e.Settings().Visible {
		t.Error("settings not recorded")
	}
	if _, err := s.OpenWorkbook("other.xlsx"); !errors.Is(err, ErrNotFound) {
		t.Errorf("OpenWorkbook = %v, want ErrNotFound", err)
	}
	wb, err := s.OpenWorkbook("book.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := wb.Worksheet("C"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Worksheet = %v, want ErrNotFound", err)
	}
	names, _ := wb.WorksheetNames()
	if !reflect.DeepEqual(names, []string{"A", "B"}) {
		t.Errorf("WorksheetNames = %v", names)
	}

	if err := s.Quit(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.OpenWorkbook("book.xlsx"); !errors.Is(err, ErrQuit) {
		t.Errorf("OpenWorkbook after Quit = %v, want ErrQuit", err)
	}
	if e.Running() != 0 {
		t.Errorf("Running = %d", e.Running())
	}
}

func TestEngine_Faults(t *testing.T) {
	boom := errors.New("boom")
	e := New()
	e.AddWorkbook("book.xlsx", "Sheet1")
	ws := startSheet(t, e, "book.xlsx", "Sheet1")

	e.Fail(Faults{Write: boom, Save: boom})
	if err := ws.SetCell(1, 1, "x"); err != boom {
		t.Errorf("SetCell = %v, want %v", err, boom)
	}
	if v, _ := ws.Cell(1, 1); v != nil {
		t.Errorf("failed write stored %v", v)
	}
	b, _ := e.Workbook("book.xlsx")
	if err := b.Save(); err != boom || b.Saves() != 0 {
		t.Errorf("Save = %v, saves = %d", err, b.Saves())
	}

	e.Fail(Faults{})
	if err := ws.SetCell(1, 1, "x"); err != nil {
		t.Errorf("SetCell after clearing faults = %v", err)
	}

	want := []string{"Start", "OpenWorkbook", "Worksheet", "SetCell", "Cell", "Save", "SetCell"}
	if got := e.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("Calls = %v, want %v", got, want)
	}
}
