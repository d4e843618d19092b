// Package memory is an in-process spreadsheet engine. It keeps workbooks as
// grids of cells in memory, records every call it receives and can be told
// to fail specific operations.
package memory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/xll-gen/dispatcher"
)

// Excel's sheet limits.
const (
	MaxRows = 1048576
	MaxCols = 16384
)

var (
	ErrNotFound    = errors.New("not found")
	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrQuit        = errors.New("session has quit")
)

// Faults makes the named operation fail with the given error.
type Faults struct {
	Start     error
	Open      error
	Worksheet error
	Read      error
	Write     error
	UsedRange error
	AutoFit   error
	Save      error
	Quit      error
}

// Engine holds the workbooks that sessions can open.
type Engine struct {
	mu       sync.Mutex
	books    map[string]*Book
	faults   Faults
	calls    []string
	settings dispatcher.Settings
	running  int
}

// New returns an empty engine.
func New() *Engine {
	return &Engine{books: make(map[string]*Book)}
}

// AddWorkbook registers a workbook at path with the named sheets, in order.
// A path without a directory stands for a workbook that was never saved.
func (e *Engine) AddWorkbook(path string, sheets ...string) *Book {
	e.mu.Lock()
	defer e.mu.Unlock()
	b := &Book{
		engine: e,
		path:   path,
		index:  make(map[string]*Sheet),
	}
	for _, name := range sheets {
		s := &Sheet{
			book:   b,
			name:   name,
			cells:  make(map[cell]any),
			fitted: make(map[int]int),
		}
		b.sheets = append(b.sheets, s)
		b.index[name] = s
	}
	e.books[path] = b
	return b
}

// Workbook returns the workbook registered at path.
func (e *Engine) Workbook(path string) (*Book, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.books[path]
	return b, ok
}

// Fail replaces the fault set.
func (e *Engine) Fail(f Faults) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.faults = f
}

// Calls returns the journal of operations received, oldest first.
func (e *Engine) Calls() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// Called reports whether op appears in the journal.
func (e *Engine) Called(op string) bool {
	for _, c := range e.Calls() {
		if c == op {
			return true
		}
	}
	return false
}

// Settings returns the flags most recently applied by a session.
func (e *Engine) Settings() dispatcher.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Running returns the number of sessions that have not quit.
func (e *Engine) Running() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// record appends op to the journal and returns its configured fault.
// The caller must hold e.mu.
func (e *Engine) record(op string, fault error) error {
	e.calls = append(e.calls, op)
	return fault
}

// Start begins a session.
func (e *Engine) Start(ctx context.Context, s dispatcher.Settings) (dispatcher.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("Start", e.faults.Start); err != nil {
		return nil, err
	}
	e.settings = s
	e.running++
	return &session{engine: e}, nil
}

type session struct {
	engine *Engine
	quit   bool
}

func (s *session) OpenWorkbook(path string) (dispatcher.Workbook, error) {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("OpenWorkbook", e.faults.Open); err != nil {
		return nil, err
	}
	if s.quit {
		return nil, ErrQuit
	}
	b, ok := e.books[path]
	if !ok {
		return nil, fmt.Errorf("workbook %q: %w", path, ErrNotFound)
	}
	return b, nil
}

func (s *session) SetScreenUpdating(on bool) error {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	e.record("SetScreenUpdating", nil)
	e.settings.ScreenUpdating = on
	return nil
}

func (s *session) Quit() error {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if !s.quit {
		s.quit = true
		e.running--
	}
	return e.record("Quit", e.faults.Quit)
}

// Book is a workbook held by the engine.
type Book struct {
	engine *Engine
	path   string
	sheets []*Sheet
	index  map[string]*Sheet
	saves  int
}

// Saves returns how many times the workbook has been saved.
func (b *Book) Saves() int {
	b.engine.mu.Lock()
	defer b.engine.mu.Unlock()
	return b.saves
}

// Sheet returns the named sheet.
func (b *Book) Sheet(name string) (*Sheet, bool) {
	b.engine.mu.Lock()
	defer b.engine.mu.Unlock()
	s, ok := b.index[name]
	return s, ok
}

// Name returns the file name of the workbook.
func (b *Book) Name() (string, error) {
	return filepath.Base(b.path), nil
}

// Dir returns the directory of the workbook, or "" if it was never saved.
func (b *Book) Dir() (string, error) {
	if dir, _ := filepath.Split(b.path); dir == "" {
		return "", nil
	}
	return filepath.Dir(b.path), nil
}

// Worksheet returns the named sheet, or an error wrapping ErrNotFound.
func (b *Book) Worksheet(name string) (dispatcher.Worksheet, error) {
	e := b.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("Worksheet", e.faults.Worksheet); err != nil {
		return nil, err
	}
	s, ok := b.index[name]
	if !ok {
		return nil, fmt.Errorf("worksheet %q: %w", name, ErrNotFound)
	}
	return s, nil
}

// WorksheetNames lists the sheets in the order they were added.
func (b *Book) WorksheetNames() ([]string, error) {
	b.engine.mu.Lock()
	defer b.engine.mu.Unlock()
	names := make([]string, len(b.sheets))
	for i, s := range b.sheets {
		names[i] = s.name
	}
	return names, nil
}

// Save counts a save of the workbook.
func (b *Book) Save() error {
	e := b.engine
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.record("Save", e.faults.Save); err != nil {
		return err
	}
	b.saves++
	return nil
}
