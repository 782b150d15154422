package pipeline

import (
	"context"
	"fmt"
)

// Host is the surrounding collaborator that owns the batch: it answers
// parameter queries for a given item and fetches binary payload bytes.
type Host interface {
	Parameter(name string, itemIndex int) (any, bool)
	FetchBinary(ctx context.Context, itemIndex int, property string) ([]byte, error)
}

// FileOpener reads a payload stored outside the item, addressed by path
type FileOpener func(ctx context.Context, path string) ([]byte, error)

// StaticHost serves parameters and payloads from in-memory items. Item
// parameters override the batch-wide defaults.
type StaticHost struct {
	items    []Item
	defaults map[string]any
	open     FileOpener
}

// NewStaticHost creates a host over items. open is used for payloads that
// carry a Path instead of inline Data and may be nil.
func NewStaticHost(items []Item, defaults map[string]any, open FileOpener) *StaticHost {
	if defaults == nil {
		defaults = map[string]any{}
	}
	return &StaticHost{items: items, defaults: defaults, open: open}
}

// Parameter returns the item's own value for name, else the batch default
func (h *StaticHost) Parameter(name string, itemIndex int) (any, bool) {
	if itemIndex >= 0 && itemIndex < len(h.items) {
		if v, ok := h.items[itemIndex].Parameters[name]; ok {
			return v, true
		}
	}
	v, ok := h.defaults[name]
	return v, ok
}

// FetchBinary returns the payload bytes of an item property
func (h *StaticHost) FetchBinary(ctx context.Context, itemIndex int, property string) ([]byte, error) {
	if itemIndex < 0 || itemIndex >= len(h.items) {
		return nil, fmt.Errorf("item index %d out of range", itemIndex)
	}
	b := h.items[itemIndex].Binary[property]
	if b == nil {
		return nil, fmt.Errorf("no binary data on property %q", property)
	}
	if b.Data != nil || b.Path == "" {
		return b.Data, nil
	}
	if h.open == nil {
		return nil, fmt.Errorf("binary property %q references %s but no file access is configured", property, b.Path)
	}
	return h.open(ctx, b.Path)
}
