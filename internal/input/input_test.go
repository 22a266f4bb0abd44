package input

import (
	"encoding/json"
	"testing"
)

func TestEventValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"mouse", `{"mouse":{"type":"down","pos":{"x":1,"y":2},"mods":1}}`, false},
		{"key", `{"key":{"key":"Escape","down":true}}`, false},
		{"both", `{"mouse":{"type":"up"},"key":{"key":"a"}}`, true},
		{"unknown mouse type", `{"mouse":{"type":"wheel"}}`, true},
		{"empty key", `{"key":{"down":true}}`, true},
		{"empty", `{}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev Event
			if err := json.Unmarshal([]byte(tt.raw), &ev); err != nil {
				t.Fatal(err)
			}
			if err := ev.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModifiers(t *testing.T) {
	m := ModShift | ModAlt
	if !m.Shift() || m.Ctrl() || !m.Alt() {
		t.Errorf("modifiers %b decoded wrongly", m)
	}
	if !(KeyEvent{Key: KeyBackspace, Down: true}).IsDelete() {
		t.Error("backspace press is not a delete")
	}
	if (KeyEvent{Key: KeyDelete}).IsDelete() {
		t.Error("delete release counted as delete")
	}
}
