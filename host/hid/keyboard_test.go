package hid

import (
	"testing"

	"macrokey/core"
)

type reportLog struct {
	reports []Report
}

func (l *reportLog) WriteReport(r Report) error {
	l.reports = append(l.reports, r)
	return nil
}

func TestChordReports(t *testing.T) {
	out := &reportLog{}
	kb := NewKeyboard(out)

	if err := kb.Press(core.KeyControl, core.KeyAlt, core.KeyT); err != nil {
		t.Fatalf("Press failed: %v", err)
	}
	if err := kb.ReleaseAll(); err != nil {
		t.Fatalf("ReleaseAll failed: %v", err)
	}

	want := []Report{
		{0x05, 0, 0x17, 0, 0, 0, 0, 0},
		{},
	}
	if len(out.reports) != len(want) {
		t.Fatalf("Expected %d reports, got %d", len(want), len(out.reports))
	}
	for i := range want {
		if out.reports[i] != want[i] {
			t.Errorf("Report %d: expected %v, got %v", i, want[i], out.reports[i])
		}
	}
}

func TestPressReleaseIndividually(t *testing.T) {
	out := &reportLog{}
	kb := NewKeyboard(out)

	kb.Press(core.KeyGUI)
	kb.Press(core.KeyR)
	kb.Press(core.KeyR) // already held
	kb.Release(core.KeyGUI)
	kb.Release(core.KeyR)

	want := []Report{
		{0x08, 0, 0, 0, 0, 0, 0, 0},
		{0x08, 0, 0x15, 0, 0, 0, 0, 0},
		{0x08, 0, 0x15, 0, 0, 0, 0, 0},
		{0x00, 0, 0x15, 0, 0, 0, 0, 0},
		{},
	}
	for i := range want {
		if out.reports[i] != want[i] {
			t.Errorf("Report %d: expected %v, got %v", i, want[i], out.reports[i])
		}
	}
}

func TestWriteText(t *testing.T) {
	out := &reportLog{}
	kb := NewKeyboard(out)

	if err := kb.WriteText("a$\n"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}

	want := []Report{
		{0, 0, 0x04, 0, 0, 0, 0, 0}, {},
		{0x02, 0, 0x21, 0, 0, 0, 0, 0}, {},
		{0, 0, 0x28, 0, 0, 0, 0, 0}, {},
	}
	if len(out.reports) != len(want) {
		t.Fatalf("Expected %d reports, got %d", len(want), len(out.reports))
	}
	for i := range want {
		if out.reports[i] != want[i] {
			t.Errorf("Report %d: expected %v, got %v", i, want[i], out.reports[i])
		}
	}
}

func TestWriteTextRejectsUnmappable(t *testing.T) {
	kb := NewKeyboard(&reportLog{})
	if err := kb.WriteText("é"); err == nil {
		t.Error("Expected error for a character outside the US layout")
	}
}
