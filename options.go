package dispatcher

import "github.com/rs/zerolog"

type options struct {
	workbook  string
	worksheet string
	settings  Settings
	log       zerolog.Logger
}

func defaultOptions() options {
	return options{log: zerolog.Nop()}
}

// Option configures a Dispatcher at construction.
type Option func(*options)

// WithWorkbook opens the workbook at path during construction.
func WithWorkbook(path string) Option {
	return func(o *options) { o.workbook = path }
}

// WithWorksheet opens the named sheet during construction. It has no effect
// unless a workbook is opened as well.
func WithWorksheet(name string) Option {
	return func(o *options) { o.worksheet = name }
}

// WithSettings overrides the headless defaults applied when the session starts.
func WithSettings(s Settings) Option {
	return func(o *options) { o.settings = s }
}

// WithLogger sets the logger. The dispatcher adds a session field to it.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}
