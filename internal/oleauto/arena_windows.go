//go:build windows

package oleauto

import "github.com/go-ole/go-ole"

// Arena owns objects that outlive a single chain, such as an application,
// its open workbooks and their sheets, and releases them together.
type Arena struct {
	objs []*ole.IDispatch
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{objs: make([]*ole.IDispatch, 0, 4)}
}

// Keep takes ownership of disp and returns it.
func (a *Arena) Keep(disp *ole.IDispatch) *ole.IDispatch {
	a.objs = append(a.objs, disp)
	return disp
}

// Release releases every kept object, newest first. The arena can be reused.
func (a *Arena) Release() {
	for i := len(a.objs) - 1; i >= 0; i-- {
		a.objs[i].Release()
	}
	a.objs = a.objs[:0]
}

// Len returns the number of objects held.
func (a *Arena) Len() int {
	return len(a.objs)
}
