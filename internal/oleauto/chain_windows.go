//go:build windows

package oleauto

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// iidEnumVariant is IID_IEnumVARIANT.
const iidEnumVariant = "{00020404-0000-0000-C000-000000000046}"

var errNoObject = errors.New("no object")

// Chain walks an automation object model one member at a time. Every
// intermediate object it reaches is released by a terminal method
// (Release, Value, Text, Int, Store). The first error stops the chain.
type Chain struct {
	base  *ole.IDispatch
	disp  *ole.IDispatch
	err   error
	last  *ole.VARIANT
	owned []*ole.IDispatch
}

// From starts a chain at disp. The chain does not take ownership of disp,
// and returns to it after each terminal method, so it can be reused.
func From(disp *ole.IDispatch) *Chain {
	return &Chain{base: disp, disp: disp}
}

// Create starts a chain at a new instance of progID. The chain owns the
// instance. COM must be initialized on the calling thread.
func Create(progID string) *Chain {
	unknown, err := oleutil.CreateObject(progID)
	if err != nil {
		return &Chain{err: fmt.Errorf("create %s: %w", progID, err)}
	}
	return adopt(unknown, progID)
}

// GetActive starts a chain at a running instance of progID. The chain owns
// the reference it obtains.
func GetActive(progID string) *Chain {
	unknown, err := oleutil.GetActiveObject(progID)
	if err != nil {
		return &Chain{err: fmt.Errorf("attach %s: %w", progID, err)}
	}
	return adopt(unknown, progID)
}

func adopt(unknown *ole.IUnknown, progID string) *Chain {
	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		return &Chain{err: fmt.Errorf("%s: %w", progID, err)}
	}
	return &Chain{disp: disp, owned: []*ole.IDispatch{disp}}
}

// Fail stops the chain with err unless it already failed.
func (c *Chain) Fail(err error) *Chain {
	if c.err == nil {
		c.err = err
	}
	return c
}

func (c *Chain) live() bool {
	if c.err != nil {
		return false
	}
	if c.disp == nil {
		c.err = errNoObject
		return false
	}
	return true
}

// step records the result of an invocation, descending into it when it is
// an object.
func (c *Chain) step(member string, result *ole.VARIANT, err error) *Chain {
	if err != nil {
		c.err = fmt.Errorf("%s: %w", member, err)
		return c
	}
	c.clearLast()
	c.last = result
	if result.VT == ole.VT_DISPATCH {
		next := result.ToIDispatch()
		next.AddRef()
		c.owned = append(c.owned, next)
		c.disp = next
	}
	return c
}

func (c *Chain) clearLast() {
	if c.last != nil {
		c.last.Clear()
		c.last = nil
	}
}

// Get reads property prop, optionally indexed by params.
func (c *Chain) Get(prop string, params ...any) *Chain {
	if !c.live() {
		return c
	}
	result, err := oleutil.GetProperty(c.disp, prop, params...)
	return c.step(prop, result, err)
}

// Call invokes method on the current object.
func (c *Chain) Call(method string, params ...any) *Chain {
	if !c.live() {
		return c
	}
	result, err := oleutil.CallMethod(c.disp, method, params...)
	return c.step(method, result, err)
}

// Put assigns property prop on the current object. The chain stays on the
// same object so several Puts can follow each other.
func (c *Chain) Put(prop string, params ...any) *Chain {
	if !c.live() {
		return c
	}
	if _, err := oleutil.PutProperty(c.disp, prop, params...); err != nil {
		c.err = fmt.Errorf("%s: %w", prop, err)
	}
	c.clearLast()
	return c
}

// Each calls fn for every object in the current collection, in the order
// the collection enumerates them, until fn returns false. Items that are
// not objects are skipped. The item chain is released after fn returns.
func (c *Chain) Each(fn func(item *Chain) bool) *Chain {
	if !c.live() {
		return c
	}

	enumVar, err := oleutil.GetProperty(c.disp, "_NewEnum")
	if err != nil {
		c.err = fmt.Errorf("_NewEnum: %w", err)
		return c
	}
	defer enumVar.Clear()

	if enumVar.VT != ole.VT_UNKNOWN && enumVar.VT != ole.VT_DISPATCH {
		c.err = errors.New("_NewEnum is not an object")
		return c
	}
	unknown := enumVar.ToIUnknown()
	if unknown == nil {
		c.err = errors.New("_NewEnum returned nil")
		return c
	}
	iid, err := ole.IIDFromString(iidEnumVariant)
	if err != nil {
		c.err = err
		return c
	}
	raw, err := unknown.QueryInterface(iid)
	if err != nil {
		c.err = fmt.Errorf("IEnumVARIANT: %w", err)
		return c
	}
	defer raw.Release()
	enum := (*ole.IEnumVARIANT)(unsafe.Pointer(raw))

	for {
		item, fetched, err := enum.Next(1)
		if err != nil || fetched == 0 {
			return c
		}
		more := true
		if item.VT == ole.VT_DISPATCH {
			disp := item.ToIDispatch()
			disp.AddRef()
			sub := &Chain{disp: disp, owned: []*ole.IDispatch{disp}}
			more = fn(sub)
			sub.Release()
		}
		item.Clear()
		if !more {
			return c
		}
	}
}

// Store ends the chain and hands the current object to the caller, who must
// release it. Everything else the chain holds is released.
func (c *Chain) Store() (*ole.IDispatch, error) {
	if !c.live() {
		return nil, c.Release()
	}
	disp := c.disp
	if n := len(c.owned); n > 0 && c.owned[n-1] == disp {
		c.owned = c.owned[:n-1]
	} else {
		// not owned by the chain; the caller gets its own reference
		disp.AddRef()
	}
	c.Release()
	return disp, nil
}

// Release ends the chain, releasing owned objects newest first, and returns
// the chain's error.
func (c *Chain) Release() error {
	for i := len(c.owned) - 1; i >= 0; i-- {
		c.owned[i].Release()
	}
	c.owned = nil
	c.disp = c.base
	c.clearLast()
	err := c.err
	c.err = nil
	return err
}

// Err returns the first error of the chain without ending it.
func (c *Chain) Err() error {
	return c.err
}

// Value ends the chain and returns the last result as a Go value.
func (c *Chain) Value() (any, error) {
	if c.err != nil {
		return nil, c.Release()
	}
	if c.last == nil {
		return nil, c.Release()
	}
	if c.last.VT == ole.VT_DISPATCH {
		c.Release()
		return nil, errors.New("result is an object, use Store")
	}
	v := c.last.Value()
	return v, c.Release()
}

// Text ends the chain and returns the last result as a string.
func (c *Chain) Text() (string, error) {
	v, err := c.Value()
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(s), nil
	}
}

// Int ends the chain and returns the last result as an int.
func (c *Chain) Int() (int, error) {
	v, err := c.Value()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float32:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("result %v (%T) is not a number", v, v)
	}
}

// Walk follows p from the current object, binding its variables from vars.
func (c *Chain) Walk(p Path, vars Vars) *Chain {
	for _, s := range p.steps {
		if c.err != nil {
			return c
		}
		args, err := s.bind(vars)
		if err != nil {
			return c.Fail(err)
		}
		switch s.Op {
		case OpGet:
			c.Get(s.Member, args...)
		case OpCall:
			c.Call(s.Member, args...)
		}
	}
	return c
}
