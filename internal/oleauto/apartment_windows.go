//go:build windows

package oleauto

import (
	"errors"
	"runtime"

	"github.com/go-ole/go-ole"
)

// sFalse is returned by CoInitialize when the thread already has an apartment.
const sFalse = 1

// Enter locks the calling goroutine to its OS thread and initializes COM on
// it. Every object created afterwards must be used from this goroutine. The
// returned leave undoes both and must be called exactly once.
func Enter() (leave func(), err error) {
	runtime.LockOSThread()
	if err := ole.CoInitialize(0); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			runtime.UnlockOSThread()
			return nil, err
		}
	}
	return func() {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
	}, nil
}
