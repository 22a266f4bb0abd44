// Package typeid generates the prefixed, sortable IDs used for figures,
// sessions and snapshots.
package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixFigure   = "fig"
	PrefixSession  = "sess"
	PrefixSnapshot = "snap"
)

// New returns a fresh ID with the given prefix.
func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewFigureID() string   { return New(PrefixFigure) }
func NewSessionID() string  { return New(PrefixSession) }
func NewSnapshotID() string { return New(PrefixSnapshot) }

// Validate checks that id parses and carries expectedPrefix. Session IDs
// arrive in URLs and are validated before any lookup.
func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
