package dispatcher

import "context"

// Settings are the application-level flags applied when a session starts.
// The zero value is a headless session: no alerts, no window, no redraw.
type Settings struct {
	DisplayAlerts  bool
	Visible        bool
	ScreenUpdating bool
}

// Engine starts sessions of a spreadsheet application.
type Engine interface {
	Start(ctx context.Context, s Settings) (Session, error)
}

// Session is a running application instance.
type Session interface {
	OpenWorkbook(path string) (Workbook, error)
	SetScreenUpdating(on bool) error
	Quit() error
}

// Workbook is a document opened within a session.
type Workbook interface {
	Name() (string, error)
	// Dir is the directory the workbook was loaded from.
	Dir() (string, error)
	Worksheet(name string) (Worksheet, error)
	// WorksheetNames lists the sheets in document order.
	WorksheetNames() ([]string, error)
	Save() error
}

// Worksheet is a named sheet within a workbook. Rows and columns are 1-based.
type Worksheet interface {
	Name() (string, error)
	Cell(row, col int) (any, error)
	SetCell(row, col int, value any) error
	UsedRows() (int, error)
	UsedCols() (int, error)
	// AutoFit sizes column col to its contents, or every column if col < 1.
	AutoFit(col int) error
}
