package zarr

import (
	"context"
	"fmt"
	"strings"
)

// ChildURLs builds the virtual directory listing for a group-like entry:
// one absolute URL per child, in the child order the entry declares.
// Containers list their keys, tables their columns, structured arrays
// their field names. base is the current request URL; its query string and
// trailing slash are stripped before children are appended. An entry with
// no children yields an empty, non-nil slice so the response serializes to
// an empty JSON array.
func ChildURLs(ctx context.Context, base string, entry Entry) ([]string, error) {
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimRight(base, "/")

	var names []string
	switch entry.Kind() {
	case KindContainer:
		c, ok := entry.(ContainerEntry)
		if !ok {
			return nil, fmt.Errorf("container entry does not enumerate keys")
		}
		keys, err := c.Keys(ctx, 0, -1)
		if err != nil {
			return nil, err
		}
		names = keys

	case KindTable:
		t, ok := entry.(TableEntry)
		if !ok {
			return nil, fmt.Errorf("table entry does not declare columns")
		}
		names = t.Columns()

	case KindArray, KindStructuredArray:
		a, ok := entry.(ArrayEntry)
		if !ok {
			return nil, fmt.Errorf("array entry does not describe its structure")
		}
		dt := a.Structure().Dtype
		if !dt.IsStruct() {
			return nil, fmt.Errorf("%w: primitive array has no children", ErrNotApplicable)
		}
		names = dt.FieldNames()

	default:
		return nil, fmt.Errorf("%w: %s entries have no listing", ErrNotApplicable, entry.Kind())
	}

	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, base+"/"+name)
	}
	return urls, nil
}
