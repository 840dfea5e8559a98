package button

import (
	"testing"
	"time"

	"macrokey/core"
)

func TestTTYInputMissingTerminalReadsReleased(t *testing.T) {
	for _, active := range []core.ActiveLevel{core.ActiveLow, core.ActiveHigh} {
		b := NewTTYInput("/nonexistent/tty", 10*time.Millisecond, active)
		btn := core.NewSelectButton(b, active)
		if btn.Held() {
			t.Errorf("%v: expected released without a terminal", active)
		}
		// Cached: the second read does not reopen the terminal
		b.Path = ""
		if btn.Held() {
			t.Errorf("%v: expected cached level on second read", active)
		}
	}
}

func TestFixed(t *testing.T) {
	tests := []struct {
		held   bool
		active core.ActiveLevel
		level  bool
	}{
		{true, core.ActiveLow, false},
		{false, core.ActiveLow, true},
		{true, core.ActiveHigh, true},
		{false, core.ActiveHigh, false},
	}
	for _, tt := range tests {
		in := Fixed(tt.held, tt.active)
		if in.ReadLevel() != tt.level {
			t.Errorf("Fixed(%v, %v): expected level %v", tt.held, tt.active, tt.level)
		}
		if core.NewSelectButton(in, tt.active).Held() != tt.held {
			t.Errorf("Fixed(%v, %v): button disagrees", tt.held, tt.active)
		}
	}
}

func TestEvdevInput(t *testing.T) {
	if _, err := NewEvdevInput("", "KEY_NOT_A_KEY", core.ActiveLow); err == nil {
		t.Error("Expected error for an unknown key name")
	}

	b, err := NewEvdevInput("/nonexistent/event0", "key_scrolllock", core.ActiveLow)
	if err != nil {
		t.Fatalf("NewEvdevInput: %v", err)
	}
	if core.NewSelectButton(b, core.ActiveLow).Held() {
		t.Error("Expected released when the device cannot be opened")
	}
}
