//go:build windows

package oleauto

import (
	"testing"
)

// excel starts an Excel instance for the test, skipping when it is not
// installed. It is quit and released at cleanup.
func excel(t *testing.T) *Chain {
	t.Helper()
	leave, err := Enter()
	if err != nil {
		t.Fatalf("Enter: %v", err)
	}
	app, err := Create("Excel.Application").Store()
	if err != nil {
		leave()
		t.Skip("Excel not available:", err)
	}
	t.Cleanup(func() {
		From(app).Put("DisplayAlerts", false).Call("Quit").Release()
		app.Release()
		leave()
	})
	return From(app)
}

func TestChain_NilDispatch(t *testing.T) {
	c := From(nil)
	if err := c.Err(); err != nil {
		t.Errorf("initial error = %v", err)
	}
	if err := c.Get("Name").Err(); err == nil {
		t.Error("Get on nil dispatch succeeded")
	}
	if err := c.Release(); err == nil {
		t.Error("Release did not report the error")
	}
}

func TestChain_InvalidProgID(t *testing.T) {
	leave, err := Enter()
	if err != nil {
		t.Fatal(err)
	}
	defer leave()
	if _, err := Create("Invalid.ProgID.That.Does.Not.Exist").Store(); err == nil {
		t.Error("Create succeeded for an invalid ProgID")
	}
}

func TestEnter_Nested(t *testing.T) {
	outer, err := Enter()
	if err != nil {
		t.Fatal(err)
	}
	defer outer()
	inner, err := Enter()
	if err != nil {
		t.Fatalf("nested Enter: %v", err)
	}
	inner()
}

func TestChain_Properties(t *testing.T) {
	app := excel(t)

	if err := app.Put("Visible", false).Release(); err != nil {
		t.Fatalf("Put Visible: %v", err)
	}
	v, err := app.Get("Visible").Value()
	if err != nil {
		t.Fatal(err)
	}
	if visible, ok := v.(bool); !ok || visible {
		t.Errorf("Visible = %v", v)
	}
	if _, err := app.Get("Workbooks").Value(); err == nil {
		t.Error("Value of an object succeeded")
	}
	if err := app.Get("NonExistentProperty").Get("Another").Release(); err == nil {
		t.Error("unknown property succeeded")
	}
}

func TestChain_WorkbookRoundTrip(t *testing.T) {
	app := excel(t)
	arena := NewArena()
	defer arena.Release()

	wb, err := app.Get("Workbooks").Call("Add").Store()
	if err != nil {
		t.Fatalf("Workbooks.Add: %v", err)
	}
	arena.Keep(wb)

	var names []string
	err = From(wb).Get("Worksheets").Each(func(item *Chain) bool {
		n, err := item.Get("Name").Text()
		if err != nil {
			t.Error(err)
			return false
		}
		names = append(names, n)
		return true
	}).Release()
	if err != nil || len(names) == 0 {
		t.Fatalf("worksheets = %v, %v", names, err)
	}

	sheet, err := From(wb).Get("Worksheets", names[0]).Store()
	if err != nil {
		t.Fatal(err)
	}
	arena.Keep(sheet)

	if err := From(sheet).Get("Cells", 2, 2).Put("Value", "Cell B2").Release(); err != nil {
		t.Fatalf("set B2: %v", err)
	}
	got, err := From(sheet).Get("Cells", 2, 2).Get("Value").Text()
	if err != nil || got != "Cell B2" {
		t.Errorf("B2 = %q, %v", got, err)
	}
	rows, err := From(sheet).Walk(MustCompile("UsedRange.Rows.Count"), nil).Int()
	if err != nil || rows != 1 {
		t.Errorf("used rows = %d, %v", rows, err)
	}
	if arena.Len() != 2 {
		t.Errorf("arena holds %d objects", arena.Len())
	}
}
