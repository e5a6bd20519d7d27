// Package projector maps raw collections onto ordered option entries and
// tracks whether a collection has been loaded yet.
package projector

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/optbind/internal/ctxlog"
	"github.com/vk/optbind/internal/options"
)

// Deriver derives a single entry from an item. *options.Accessor satisfies it.
type Deriver interface {
	Entry(ctx context.Context, item any) (*options.Entry, error)
}

// Project derives one entry per item, in source order. Duplicate keys are kept.
func Project(ctx context.Context, items []any, d Deriver) ([]options.Entry, error) {
	entries := make([]options.Entry, 0, len(items))
	for _, item := range items {
		entry, err := d.Entry(ctx, item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	ctxlog.FromContext(ctx).Debug("Projected collection.", "count", len(entries))
	return entries, nil
}

// ToItems normalizes a collection value to a slice of items. Slices and
// arrays of any element type are accepted and nil yields an empty slice.
// Elements are taken as-is, so pointer items keep their identity.
func ToItems(v any) ([]any, error) {
	switch x := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return x, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, nil
	}
	return nil, fmt.Errorf("collection is a %T, not a sequence", v)
}
