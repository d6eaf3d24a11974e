package testutil

import (
	"os"
	"testing"
)

// mockTB captures whether a test failure occurred.
type mockTB struct {
	testing.TB // embedded for unimplemented methods
	failed     bool
}

func (m *mockTB) Helper()                           {}
func (m *mockTB) Fatal(args ...any)                 { m.failed = true }
func (m *mockTB) Fatalf(format string, args ...any) { m.failed = true }

func TestEqual(t *testing.T) {
	m := &mockTB{}

	Equal(m, 1, 1)
	if m.failed {
		t.Error("Equal(1, 1) should pass")
	}

	m.failed = false
	Equal(m, "foo", "bar")
	if !m.failed {
		t.Error("Equal(foo, bar) should fail")
	}
}

func TestSliceEqual(t *testing.T) {
	m := &mockTB{}

	SliceEqual(m, []int{1, 2, 3}, []int{1, 2, 3})
	if m.failed {
		t.Error("equal slices should pass")
	}

	m.failed = false
	SliceEqual(m, []int{1, 2}, []int{1, 2, 3})
	if !m.failed {
		t.Error("different length slices should fail")
	}
}

func TestErrors(t *testing.T) {
	m := &mockTB{}

	NoError(m, nil)
	if m.failed {
		t.Error("NoError(nil) should pass")
	}

	m.failed = false
	NoError(m, os.ErrNotExist)
	if !m.failed {
		t.Error("NoError(err) should fail")
	}

	m.failed = false
	ErrorIs(m, os.ErrNotExist, os.ErrNotExist)
	if m.failed {
		t.Error("ErrorIs(same) should pass")
	}

	m.failed = false
	ErrorIs(m, nil, os.ErrNotExist)
	if !m.failed {
		t.Error("ErrorIs(nil) should fail")
	}
}

func TestTrueFalse(t *testing.T) {
	m := &mockTB{}

	True(m, false)
	if !m.failed {
		t.Error("True(false) should fail")
	}

	m.failed = false
	False(m, true)
	if !m.failed {
		t.Error("False(true) should fail")
	}
}

func TestGreater(t *testing.T) {
	m := &mockTB{}

	Greater(m, uint32(5), uint32(3))
	if m.failed {
		t.Error("Greater(5, 3) should pass")
	}

	m.failed = false
	Greater(m, 3, 3)
	if !m.failed {
		t.Error("Greater(3, 3) should fail")
	}
}

func TestPanics(t *testing.T) {
	m := &mockTB{}

	Panics(m, "boom", func() { panic("big boom") })
	if m.failed {
		t.Error("matching panic should pass")
	}

	m.failed = false
	Panics(m, "boom", func() {})
	if !m.failed {
		t.Error("no panic should fail")
	}

	m.failed = false
	Panics(m, "boom", func() { panic("fizzle") })
	if !m.failed {
		t.Error("mismatched panic should fail")
	}
}

func TestFormatMsg(t *testing.T) {
	if got := formatMsg(nil); got != "assertion failed" {
		t.Errorf("formatMsg(nil) = %q, want %q", got, "assertion failed")
	}
	if got := formatMsg([]any{"value is %d", 42}); got != "value is 42" {
		t.Errorf("formatMsg with args = %q, want %q", got, "value is 42")
	}
	if got := formatMsg([]any{123}); got != "assertion failed" {
		t.Errorf("formatMsg(non-string) = %q, want %q", got, "assertion failed")
	}
}
