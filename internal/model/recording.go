package model

import "slices"

// Recording collects the IDs of figures changed while it is the innermost
// open recording of its model. Recordings opened later shadow earlier ones
// until they close, so interleaved actions of several editors are told
// apart.
type Recording struct {
	m    *Model
	ids  []string
	seen map[string]bool
}

// Record opens a recording on top of any already open.
func (m *Model) Record() *Recording {
	r := &Recording{m: m, seen: make(map[string]bool)}
	m.recording = append(m.recording, r)
	return r
}

// IDs returns the touched figures in first-touch order.
func (r *Recording) IDs() []string { return slices.Clone(r.ids) }

// Close stops the recording. Closing twice is harmless.
func (r *Recording) Close() {
	if r.m == nil {
		return
	}
	r.m.recording = slices.DeleteFunc(r.m.recording, func(o *Recording) bool { return o == r })
	r.m = nil
}

func (r *Recording) add(ids ...string) {
	for _, id := range ids {
		if !r.seen[id] {
			r.seen[id] = true
			r.ids = append(r.ids, id)
		}
	}
}

func (m *Model) record(c Change) {
	if n := len(m.recording); n > 0 {
		r := m.recording[n-1]
		r.add(c.Figures...)
		r.add(c.Removed...)
	}
}
