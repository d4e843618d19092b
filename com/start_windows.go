//go:build windows

package com

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-ole/go-ole"
	"github.com/rs/zerolog"
	"github.com/xll-gen/dispatcher"
	"github.com/xll-gen/dispatcher/internal/oleauto"
)

var (
	openWorkbook = oleauto.MustCompile("Workbooks.Open(path)")
	usedRows     = oleauto.MustCompile("UsedRange.Rows.Count")
	usedCols     = oleauto.MustCompile("UsedRange.Columns.Count")
	autoFitAll   = oleauto.MustCompile("Columns.AutoFit()")
	nameOf       = oleauto.MustCompile("Name")
	dirOf        = oleauto.MustCompile("Path")
	saveBook     = oleauto.MustCompile("Save()")
	closeBook    = oleauto.MustCompile("Close(false)")
	bookCount    = oleauto.MustCompile("Workbooks.Count")
	quitApp      = oleauto.MustCompile("Quit()")
)

// appFlags are the application properties a session changes.
var appFlags = []string{"DisplayAlerts", "Visible", "ScreenUpdating"}

var errQuit = errors.New("session has quit")

func (e *Engine) start(s dispatcher.Settings) (dispatcher.Session, error) {
	leave, err := oleauto.Enter()
	if err != nil {
		return nil, fmt.Errorf("initialize COM: %w", err)
	}

	var root *oleauto.Chain
	if e.attach {
		root = oleauto.GetActive(e.progID)
	} else {
		root = oleauto.Create(e.progID)
	}
	app, err := root.Store()
	if err != nil {
		leave()
		return nil, err
	}

	sess := &session{
		app:    app,
		arena:  oleauto.NewArena(),
		leave:  leave,
		log:    e.log.With().Str("prog_id", e.progID).Logger(),
		attach: e.attach,
	}
	sess.arena.Keep(app)

	if e.attach {
		// The instance belongs to the user: remember how it was set up so
		// Quit can hand it back unchanged.
		if sess.prior, err = readFlags(app); err != nil {
			sess.arena.Release()
			leave()
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	err = oleauto.From(app).
		Put("DisplayAlerts", s.DisplayAlerts).
		Put("Visible", s.Visible).
		Put("ScreenUpdating", s.ScreenUpdating).
		Release()
	if err != nil {
		sess.Quit()
		return nil, fmt.Errorf("apply settings: %w", err)
	}
	sess.log.Debug().Bool("attach", e.attach).Msg("automation server ready")
	return sess, nil
}

func readFlags(app *ole.IDispatch) (map[string]any, error) {
	flags := make(map[string]any, len(appFlags))
	c := oleauto.From(app)
	for _, name := range appFlags {
		v, err := c.Get(name).Value()
		if err != nil {
			return nil, err
		}
		flags[name] = v
	}
	return flags, nil
}

type session struct {
	app   *ole.IDispatch
	arena *oleauto.Arena
	leave func()
	log   zerolog.Logger
	done  bool

	// attach mode: the application is shared with the user
	attach bool
	prior  map[string]any
	opened []*ole.IDispatch
}

func (s *session) OpenWorkbook(path string) (dispatcher.Workbook, error) {
	if s.done {
		return nil, errQuit
	}
	// Excel resolves relative paths against its own working directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	before := 0
	if s.attach {
		if before, err = oleauto.From(s.app).Walk(bookCount, nil).Int(); err != nil {
			return nil, err
		}
	}
	disp, err := oleauto.From(s.app).Walk(openWorkbook, oleauto.Vars{"path": abs}).Store()
	if err != nil {
		return nil, err
	}
	s.arena.Keep(disp)
	if s.attach {
		// Open returns the user's copy when the workbook is already open;
		// only workbooks this session added are closed on Quit.
		after, err := oleauto.From(s.app).Walk(bookCount, nil).Int()
		if err == nil && after > before {
			s.opened = append(s.opened, disp)
		}
	}
	return &workbook{disp: disp, arena: s.arena}, nil
}

func (s *session) SetScreenUpdating(on bool) error {
	if s.done {
		return errQuit
	}
	return oleauto.From(s.app).Put("ScreenUpdating", on).Release()
}

// Quit closes the application without prompting, releases every object of
// the session and leaves the COM apartment. An attached application keeps
// running: only the workbooks the session opened are closed, unsaved, and
// the settings found at Start are restored.
func (s *session) Quit() error {
	if s.done {
		return nil
	}
	s.done = true
	var err error
	if s.attach {
		err = s.detach()
	} else {
		err = oleauto.From(s.app).Put("DisplayAlerts", false).Walk(quitApp, nil).Release()
	}
	s.log.Debug().Int("objects", s.arena.Len()).Msg("releasing session")
	s.arena.Release()
	s.leave()
	return err
}

func (s *session) detach() error {
	var errs []error
	for i := len(s.opened) - 1; i >= 0; i-- {
		if err := oleauto.From(s.opened[i]).Walk(closeBook, nil).Release(); err != nil {
			errs = append(errs, err)
		}
	}
	s.opened = nil
	c := oleauto.From(s.app)
	for _, name := range appFlags {
		if err := c.Put(name, s.prior[name]).Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type workbook struct {
	disp  *ole.IDispatch
	arena *oleauto.Arena
}

func (w *workbook) Name() (string, error) {
	return oleauto.From(w.disp).Walk(nameOf, nil).Text()
}

func (w *workbook) Dir() (string, error) {
	return oleauto.From(w.disp).Walk(dirOf, nil).Text()
}

func (w *workbook) Worksheet(sheet string) (dispatcher.Worksheet, error) {
	disp, err := oleauto.From(w.disp).Get("Worksheets", sheet).Store()
	if err != nil {
		return nil, err
	}
	w.arena.Keep(disp)
	return &worksheet{disp: disp}, nil
}

func (w *workbook) WorksheetNames() ([]string, error) {
	names := []string{}
	var itemErr error
	err := oleauto.From(w.disp).Get("Worksheets").Each(func(item *oleauto.Chain) bool {
		n, err := item.Walk(nameOf, nil).Text()
		if err != nil {
			itemErr = err
			return false
		}
		names = append(names, n)
		return true
	}).Release()
	if err = errors.Join(err, itemErr); err != nil {
		return nil, err
	}
	return names, nil
}

func (w *workbook) Save() error {
	return oleauto.From(w.disp).Walk(saveBook, nil).Release()
}

type worksheet struct {
	disp *ole.IDispatch
}

func (ws *worksheet) Name() (string, error) {
	return oleauto.From(ws.disp).Walk(nameOf, nil).Text()
}

func (ws *worksheet) Cell(row, col int) (any, error) {
	return oleauto.From(ws.disp).Get("Cells", row, col).Get("Value").Value()
}

func (ws *worksheet) SetCell(row, col int, value any) error {
	return oleauto.From(ws.disp).Get("Cells", row, col).Put("Value", value).Release()
}

func (ws *worksheet) UsedRows() (int, error) {
	return oleauto.From(ws.disp).Walk(usedRows, nil).Int()
}

func (ws *worksheet) UsedCols() (int, error) {
	return oleauto.From(ws.disp).Walk(usedCols, nil).Int()
}

func (ws *worksheet) AutoFit(col int) error {
	if col < 1 {
		return oleauto.From(ws.disp).Walk(autoFitAll, nil).Release()
	}
	return oleauto.From(ws.disp).Get("Columns", col).Call("AutoFit").Release()
}
