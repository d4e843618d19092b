package dispatcher

import (
	"context"
	"fmt"
)

// Run constructs a Dispatcher on engine, calls fn with it and closes the
// session when fn returns, whatever the outcome. The error from fn takes
// precedence; a teardown error is returned only if fn succeeded.
func Run(ctx context.Context, engine Engine, fn func(d *Dispatcher) error, opts ...Option) (err error) {
	d, err := New(ctx, engine, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			d.Close()
			panic(r)
		}
		closeErr := d.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close session: %w", closeErr)
		}
	}()
	return fn(d)
}
