package model

import "slices"

// Subscription is a registered change listener. Close unregisters it.
type Subscription struct {
	m  *Model
	fn func(Change)
}

// Subscribe registers fn. Listeners run synchronously, in subscription
// order, before the mutating call returns.
func (m *Model) Subscribe(fn func(Change)) *Subscription {
	s := &Subscription{m: m, fn: fn}
	m.listeners = append(m.listeners, s)
	return s
}

// Close unregisters the listener. Closing twice is harmless.
func (s *Subscription) Close() {
	if s.m == nil {
		return
	}
	s.m.listeners = slices.DeleteFunc(s.m.listeners, func(o *Subscription) bool { return o == s })
	s.m = nil
}

func (m *Model) notify(c Change) {
	m.last = c.Reason
	m.record(c)
	for _, s := range slices.Clone(m.listeners) {
		if s.m != nil {
			s.fn(c)
		}
	}
}
