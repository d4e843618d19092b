package dispatcher

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dispatcher is a facade over one automation session and at most one open
// workbook and worksheet. A worksheet is only held while its workbook is.
//
// A Dispatcher is single-use: once closed it cannot reopen a session. It is
// not safe for concurrent use.
type Dispatcher struct {
	log       zerolog.Logger
	session   Session
	workbook  Workbook
	worksheet Worksheet

	// names as requested by the caller, kept for error context
	bookPath  string
	sheetName string
}

// New starts a session on engine and opens the workbook and worksheet given
// by opts. If any step fails the session is quit before New returns. A nil
// ctx is treated as context.Background.
func New(ctx context.Context, engine Engine, opts ...Option) (*Dispatcher, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Dispatcher{
		log: o.log.With().Str("session", uuid.NewString()).Logger(),
	}

	session, err := engine.Start(ctx, o.settings)
	if err != nil {
		return nil, &Error{Kind: KindEngineStart, Err: err}
	}
	d.session = session
	d.log.Debug().
		Bool("visible", o.settings.Visible).
		Bool("display_alerts", o.settings.DisplayAlerts).
		Bool("screen_updating", o.settings.ScreenUpdating).
		Msg("session started")

	if o.workbook == "" {
		if o.worksheet != "" {
			d.log.Debug().Str("worksheet", o.worksheet).Msg("worksheet ignored without workbook")
		}
		return d, nil
	}

	if err := d.OpenWorkbook(o.workbook); err != nil {
		d.abort()
		return nil, err
	}
	if o.worksheet != "" {
		if err := d.OpenWorksheet(o.worksheet); err != nil {
			d.abort()
			return nil, err
		}
	}
	return d, nil
}

// abort tears down a partially constructed dispatcher.
func (d *Dispatcher) abort() {
	if err := d.Close(); err != nil {
		d.log.Warn().Err(err).Msg("teardown after failed construction")
	}
}

// OpenWorkbook opens the workbook at path and makes it current. Any
// previously open worksheet is dropped.
func (d *Dispatcher) OpenWorkbook(path string) error {
	if d.session == nil {
		return &Error{Kind: KindWorkbookOpen, Workbook: path, Err: errClosed}
	}
	wb, err := d.session.OpenWorkbook(path)
	if err != nil {
		return &Error{Kind: KindWorkbookOpen, Workbook: path, Err: err}
	}
	d.workbook, d.bookPath = wb, path
	d.worksheet, d.sheetName = nil, ""
	d.log.Debug().Str("workbook", path).Msg("workbook opened")
	return nil
}

// OpenWorksheet opens the named sheet of the current workbook.
func (d *Dispatcher) OpenWorksheet(name string) error {
	if d.workbook == nil {
		return &Error{Kind: KindWorksheetOpen, Worksheet: name, Err: errNoWorkbook}
	}
	ws, err := d.workbook.Worksheet(name)
	if err != nil {
		return &Error{Kind: KindWorksheetOpen, Workbook: d.bookPath, Worksheet: name, Err: err}
	}
	d.worksheet, d.sheetName = ws, name
	d.log.Debug().Str("worksheet", name).Msg("worksheet opened")
	return nil
}

// WorkbookName returns the file name of the open workbook, or "" if none.
func (d *Dispatcher) WorkbookName() string {
	if d.workbook == nil {
		return ""
	}
	name, err := d.workbook.Name()
	if err != nil {
		d.log.Warn().Err(err).Msg("workbook name")
		return ""
	}
	return name
}

// WorkbookDir returns the directory of the open workbook, or "" if none.
func (d *Dispatcher) WorkbookDir() string {
	if d.workbook == nil {
		return ""
	}
	dir, err := d.workbook.Dir()
	if err != nil {
		d.log.Warn().Err(err).Msg("workbook dir")
		return ""
	}
	return dir
}

// WorkbookPath returns the full path of the open workbook. It is "" unless
// both a workbook and a worksheet are open, and for a workbook that has
// never been saved.
func (d *Dispatcher) WorkbookPath() string {
	if d.workbook == nil || d.worksheet == nil {
		return ""
	}
	dir, name := d.WorkbookDir(), d.WorkbookName()
	if dir == "" || name == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// WorksheetName returns the name of the open worksheet, or "" if none.
func (d *Dispatcher) WorksheetName() string {
	if d.worksheet == nil {
		return ""
	}
	name, err := d.worksheet.Name()
	if err != nil {
		d.log.Warn().Err(err).Msg("worksheet name")
		return ""
	}
	return name
}

// WorksheetNames lists the sheets of the open workbook in document order.
// It returns an empty slice when no workbook is open.
func (d *Dispatcher) WorksheetNames() ([]string, error) {
	if d.workbook == nil {
		return []string{}, nil
	}
	names, err := d.workbook.WorksheetNames()
	if err != nil {
		return nil, &Error{Kind: KindWorkbookOpen, Workbook: d.bookPath, Err: err}
	}
	return names, nil
}

// Read returns the value of the cell at (row, col).
func (d *Dispatcher) Read(row, col int) (any, error) {
	if d.worksheet == nil {
		return nil, d.cellError(KindRead, row, col, nil, errNoWorksheet)
	}
	v, err := d.worksheet.Cell(row, col)
	if err != nil {
		return nil, d.cellError(KindRead, row, col, nil, err)
	}
	return v, nil
}

// Write sets the cell at (row, col) to value.
func (d *Dispatcher) Write(value any, row, col int) error {
	if d.worksheet == nil {
		return d.cellError(KindWrite, row, col, value, errNoWorksheet)
	}
	if err := d.worksheet.SetCell(row, col, value); err != nil {
		return d.cellError(KindWrite, row, col, value, err)
	}
	return nil
}

func (d *Dispatcher) cellError(kind Kind, row, col int, value any, err error) *Error {
	return &Error{
		Kind:      kind,
		Workbook:  d.bookPath,
		Worksheet: d.sheetName,
		Cell:      true,
		Row:       row,
		Col:       col,
		Value:     value,
		Err:       err,
	}
}

// sheetError reports a failure of the worksheet as a whole.
func (d *Dispatcher) sheetError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Workbook: d.bookPath, Worksheet: d.sheetName, Err: err}
}

// workspace returns the open worksheet, or a KindNoWorkspace error.
func (d *Dispatcher) workspace() (Worksheet, error) {
	if d.workbook == nil || d.worksheet == nil {
		return nil, &Error{Kind: KindNoWorkspace, Workbook: d.bookPath}
	}
	return d.worksheet, nil
}

// UsedRows returns the number of rows in the used range of the worksheet.
func (d *Dispatcher) UsedRows() (int, error) {
	ws, err := d.workspace()
	if err != nil {
		return 0, err
	}
	n, err := ws.UsedRows()
	if err != nil {
		return 0, d.sheetError(KindRead, err)
	}
	return n, nil
}

// UsedCols returns the number of columns in the used range of the worksheet.
func (d *Dispatcher) UsedCols() (int, error) {
	ws, err := d.workspace()
	if err != nil {
		return 0, err
	}
	n, err := ws.UsedCols()
	if err != nil {
		return 0, d.sheetError(KindRead, err)
	}
	return n, nil
}

// FitColumnWidth autosizes column col, or every column if col < 1.
func (d *Dispatcher) FitColumnWidth(col int) error {
	ws, err := d.workspace()
	if err != nil {
		return err
	}
	if err := ws.AutoFit(col); err != nil {
		return d.sheetError(KindWrite, err)
	}
	return nil
}

// Save writes the open workbook back to its current path.
func (d *Dispatcher) Save() error {
	if d.workbook == nil {
		return &Error{Kind: KindSave, Err: errNoWorkbook}
	}
	if err := d.workbook.Save(); err != nil {
		return &Error{Kind: KindSave, Workbook: d.bookPath, Err: err}
	}
	d.log.Debug().Str("workbook", d.bookPath).Msg("workbook saved")
	return nil
}

// Close restores screen updating and quits the session. It always releases
// the session, even when restoring fails. The returned error is for
// diagnostics only. Calling Close again is a no-op.
func (d *Dispatcher) Close() error {
	if d.session == nil {
		return nil
	}
	session := d.session
	d.session, d.workbook, d.worksheet = nil, nil, nil

	var errs []error
	if err := session.SetScreenUpdating(true); err != nil {
		errs = append(errs, err)
	}
	if err := session.Quit(); err != nil {
		errs = append(errs, err)
	}
	err := errors.Join(errs...)
	if err != nil {
		d.log.Warn().Err(err).Msg("session quit")
	} else {
		d.log.Debug().Msg("session quit")
	}
	return err
}

// SaveAndQuit saves the workbook and then closes the session. The session
// is closed even if saving fails; any failure is reported as KindSave.
func (d *Dispatcher) SaveAndQuit() error {
	path := d.bookPath
	saveErr := d.Save()
	closeErr := d.Close()
	if saveErr == nil && closeErr == nil {
		return nil
	}
	var cause error
	if e, ok := saveErr.(*Error); ok {
		cause = e.Err
	} else {
		cause = saveErr
	}
	return &Error{Kind: KindSave, Workbook: path, Err: errors.Join(cause, closeErr)}
}
