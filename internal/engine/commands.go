package engine

import (
	"errors"
	"fmt"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command names accepted by Execute.
const (
	CmdUndo      = "undo"
	CmdRedo      = "redo"
	CmdSelectAll = "selectAll"
	CmdDelete    = "delete"
	CmdGroup     = "group"
	CmdUngroup   = "ungroup"
	CmdToTop     = "toTop"
	CmdToBottom  = "toBottom"
	CmdUp        = "up"
	CmdDown      = "down"
	CmdStop      = "stop"
	CmdResetView = "resetView"
)

// Execute runs a named editor command. It reports whether the command
// changed anything it can tell about; reorder and selection commands
// always report true.
func (e *Engine) Execute(name string) (bool, error) {
	ed := e.editor
	switch name {
	case CmdUndo:
		return ed.Undo(), nil
	case CmdRedo:
		return ed.Redo(), nil
	case CmdSelectAll:
		ed.SelectAll()
	case CmdDelete:
		if len(ed.Selection()) == 0 {
			return false, nil
		}
		ed.DeleteSelection()
	case CmdGroup:
		_, ok := ed.GroupSelection()
		return ok, nil
	case CmdUngroup:
		before := e.revision
		ed.UngroupSelection()
		return e.revision != before, nil
	case CmdToTop:
		ed.SelectionToTop()
	case CmdToBottom:
		ed.SelectionToBottom()
	case CmdUp:
		ed.SelectionUp()
	case CmdDown:
		ed.SelectionDown()
	case CmdStop:
		ed.StopOperation()
	case CmdResetView:
		ed.ResetView()
	default:
		return false, fmt.Errorf("%w %q", ErrUnknownCommand, name)
	}
	return true, nil
}

// Commands lists the names Execute accepts.
func Commands() []string {
	return []string{
		CmdUndo, CmdRedo, CmdSelectAll, CmdDelete, CmdGroup, CmdUngroup,
		CmdToTop, CmdToBottom, CmdUp, CmdDown, CmdStop, CmdResetView,
	}
}
