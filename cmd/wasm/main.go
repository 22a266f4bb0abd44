//go:build js && wasm

package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/inamate/vecedit/internal/editor"
	"github.com/inamate/vecedit/internal/engine"
)

var eng *engine.Engine

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})))
	eng = engine.New(editor.DefaultOptions())

	// Create the engine API object
	vecEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	vecEngine.Set("loadDocument", js.FuncOf(loadDocument))
	vecEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	vecEngine.Set("dispatch", js.FuncOf(dispatch))
	vecEngine.Set("setTool", js.FuncOf(setTool))
	vecEngine.Set("setMode", js.FuncOf(setMode))
	vecEngine.Set("setAttributes", js.FuncOf(setAttributes))
	vecEngine.Set("setSelection", js.FuncOf(setSelection))
	vecEngine.Set("execute", js.FuncOf(execute))
	vecEngine.Set("undo", js.FuncOf(undo))
	vecEngine.Set("redo", js.FuncOf(redo))
	vecEngine.Set("setView", js.FuncOf(setView))
	vecEngine.Set("zoom", js.FuncOf(zoom))
	vecEngine.Set("pan", js.FuncOf(pan))
	vecEngine.Set("setGrid", js.FuncOf(setGrid))
	vecEngine.Set("onChange", js.FuncOf(onChange))

	// --- Queries (frontend ← backend) ---
	vecEngine.Set("render", js.FuncOf(render))
	vecEngine.Set("hitTest", js.FuncOf(hitTest))
	vecEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	vecEngine.Set("getDocument", js.FuncOf(getDocument))
	vecEngine.Set("getSelection", js.FuncOf(getSelection))
	vecEngine.Set("getAttributes", js.FuncOf(getAttributes))
	vecEngine.Set("getStatus", js.FuncOf(getStatus))
	vecEngine.Set("getCommands", js.FuncOf(getCommands))

	// Register on global scope
	js.Global().Set("vecEngine", vecEngine)

	// Signal that WASM is ready
	js.Global().Set("vecWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("document JSON")
	}
	return result(eng.LoadDocument(args[0].String()))
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	eng.LoadSampleDocument()
	return result(nil)
}

// dispatch takes one event or an array of events as JSON.
func dispatch(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("event JSON")
	}
	return result(eng.Dispatch(args[0].String()))
}

func setTool(this js.Value, args []js.Value) interface{} {
	name := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	return result(eng.SetTool(name))
}

func setMode(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("mode")
	}
	return result(eng.SetMode(args[0].String()))
}

func setAttributes(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("attributes JSON")
	}
	return result(eng.SetAttributes(args[0].String()))
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func execute(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("command name")
	}
	changed, err := eng.Execute(args[0].String())
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "changed": changed})
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Redo())
}

func setView(this js.Value, args []js.Value) interface{} {
	if len(args) < 6 {
		return missing("matrix")
	}
	var m [6]float64
	for i := range m {
		m[i] = args[i].Float()
	}
	eng.SetView(m)
	return nil
}

func zoom(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	eng.Zoom(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

func pan(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.Pan(args[0].Float(), args[1].Float())
	return nil
}

func setGrid(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	eng.SetGrid(args[0].Float(), args[1].Bool())
	return nil
}

// onChange registers a callback receiving each model change as JSON.
func onChange(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return missing("callback")
	}
	cb := args[0]
	eng.OnChange(func(c engine.Change) {
		data, err := json.Marshal(c)
		if err != nil {
			slog.Error("encode change", "error", err)
			return
		}
		cb.Invoke(string(data))
	})
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	x := args[0].Float()
	y := args[1].Float()
	return js.ValueOf(eng.HitTest(x, y))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getAttributes(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetAttributes())
}

func getStatus(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetStatus())
}

func getCommands(this js.Value, args []js.Value) interface{} {
	cmds := engine.Commands()
	out := make([]interface{}, len(cmds))
	for i, c := range cmds {
		out[i] = c
	}
	return js.ValueOf(out)
}
