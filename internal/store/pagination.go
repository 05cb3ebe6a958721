package store

import (
	"encoding/base64"
	"fmt"
)

// Page size bounds.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// PaginationParams contains pagination request parameters.
type PaginationParams struct {
	Limit  int    // Items per page (defaults to 100, at most 1000)
	Cursor string // Opaque cursor for the next page (empty for the first page)
}

// PaginatedResult contains one page of items and the cursor for the next.
type PaginatedResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"` // Empty if no more pages
	HasMore    bool   `json:"hasMore"`
	Total      int    `json:"total"`
}

// Validate clamps the limit into range.
func (p *PaginationParams) Validate() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
}

// EncodeCursor creates an opaque cursor from the key of the last item served.
func EncodeCursor(key string) string {
	if key == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodeCursor decodes a cursor back to a key.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("invalid cursor: %w", err)
	}

	return string(decoded), nil
}

// Paginate slices an ordered list. The page starts right after the item whose
// key matches the cursor; a cursor naming an item that no longer exists is an
// error, since the caller's position is lost.
func Paginate[T any](items []T, params PaginationParams, key func(T) string) (PaginatedResult[T], error) {
	params.Validate()

	after, err := DecodeCursor(params.Cursor)
	if err != nil {
		return PaginatedResult[T]{}, err
	}

	start := 0
	if after != "" {
		start = -1
		for i, item := range items {
			if key(item) == after {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return PaginatedResult[T]{}, fmt.Errorf("invalid cursor: %q not found", after)
		}
	}

	end := min(start+params.Limit, len(items))
	result := PaginatedResult[T]{
		Items: append([]T{}, items[start:end]...),
		Total: len(items),
	}
	if end < len(items) {
		result.HasMore = true
		result.NextCursor = EncodeCursor(key(items[end-1]))
	}
	return result, nil
}
