// Package input describes the pointer and keyboard events an editor consumes.
package input

import (
	"fmt"

	"github.com/inamate/vecedit/internal/geom"
)

// MouseType is the kind of pointer event.
type MouseType string

const (
	MouseDown  MouseType = "down"
	MouseMove  MouseType = "move"
	MouseUp    MouseType = "up"
	MouseEnter MouseType = "enter"
	MouseLeave MouseType = "leave"
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	// ModShift extends a selection by area.
	ModShift Modifiers = 1 << iota
	// ModCtrl toggles membership of a single figure.
	ModCtrl
	ModAlt
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }

// MouseEvent is a pointer event. Pos is in device coordinates when it
// reaches the editor and in sheet coordinates when it reaches a tool.
type MouseEvent struct {
	Type        MouseType  `json:"type"`
	Pos         geom.Point `json:"pos"`
	Button      int        `json:"button,omitempty"`
	Mods        Modifiers  `json:"mods,omitempty"`
	DoubleClick bool       `json:"doubleClick,omitempty"`
}

// At returns a copy of e relocated to p.
func (e MouseEvent) At(p geom.Point) MouseEvent {
	e.Pos = p
	return e
}

func (e MouseEvent) String() string {
	return fmt.Sprintf("%s(%g,%g)", e.Type, e.Pos.X, e.Pos.Y)
}

// Key names the keys editors react to. Other keys pass through as their
// printable value.
type Key string

const (
	KeyEscape    Key = "Escape"
	KeyEnter     Key = "Enter"
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "Backspace"
)

// KeyEvent is a key press or release.
type KeyEvent struct {
	Key  Key       `json:"key"`
	Down bool      `json:"down"`
	Mods Modifiers `json:"mods,omitempty"`
}

// IsDelete reports whether the event is a Delete or Backspace press.
func (e KeyEvent) IsDelete() bool {
	return e.Down && (e.Key == KeyDelete || e.Key == KeyBackspace)
}

// Event is the union carried over the wire: exactly one of Mouse or Key is set.
type Event struct {
	Mouse *MouseEvent `json:"mouse,omitempty"`
	Key   *KeyEvent   `json:"key,omitempty"`
}

// Validate checks that exactly one member is set and the mouse type is known.
func (e Event) Validate() error {
	switch {
	case e.Mouse != nil && e.Key != nil:
		return fmt.Errorf("event carries both mouse and key")
	case e.Mouse != nil:
		switch e.Mouse.Type {
		case MouseDown, MouseMove, MouseUp, MouseEnter, MouseLeave:
			return nil
		}
		return fmt.Errorf("unknown mouse event type %q", e.Mouse.Type)
	case e.Key != nil:
		if e.Key.Key == "" {
			return fmt.Errorf("key event without key")
		}
		return nil
	}
	return fmt.Errorf("empty event")
}
