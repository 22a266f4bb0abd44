package typeid

import (
	"strings"
	"testing"
)

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
		ok     bool
	}{
		{"figure", NewFigureID(), PrefixFigure, true},
		{"session", NewSessionID(), PrefixSession, true},
		{"wrong prefix", NewSnapshotID(), PrefixFigure, false},
		{"garbage", "not-an-id", PrefixFigure, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id, tt.prefix)
			if (err == nil) != tt.ok {
				t.Errorf("Validate(%q, %q) = %v", tt.id, tt.prefix, err)
			}
		})
	}
	if id := NewFigureID(); !strings.HasPrefix(id, "fig_") {
		t.Errorf("figure id %q lacks prefix", id)
	}
	if NewFigureID() == NewFigureID() {
		t.Error("ids repeat")
	}
}
