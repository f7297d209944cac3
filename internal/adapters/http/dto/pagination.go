package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// Cursor errors.
var (
	// ErrInvalidCursor is returned when cursor decoding fails.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrStaleCursor is returned when the list changed length since the
	// cursor was issued, so positions no longer line up.
	ErrStaleCursor = errors.New("stale cursor")

	// ErrNoCursor signals a first page request.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest represents pagination parameters from the request.
type PaginationRequest struct {
	// Cursor is an opaque string from a previous response's NextCursor.
	Cursor string `form:"cursor"`

	// Limit is the maximum number of items to return (1-100, default 20).
	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// PaginatedResponse is a generic paginated response structure.
type PaginatedResponse[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Total      int    `json:"total"`
}

// CursorData is the position encoded in a cursor. Total is the list length
// when the cursor was issued.
type CursorData struct {
	Offset int `json:"o"`
	Total  int `json:"t"`
}

// EncodeCursor encodes cursor data to a base64 string.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor decodes a base64 cursor string.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.Offset < 0 || data.Total < 0 {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// Paginate returns the page of items selected by req.
func Paginate[T any](items []T, req PaginationRequest) (*PaginatedResponse[T], error) {
	offset := 0

	cursor, err := DecodeCursor(req.Cursor)
	switch {
	case errors.Is(err, ErrNoCursor):
	case err != nil:
		return nil, err
	case cursor.Total != len(items) || cursor.Offset > len(items):
		return nil, ErrStaleCursor
	default:
		offset = cursor.Offset
	}

	end := min(offset+req.GetLimit(), len(items))

	page := &PaginatedResponse[T]{
		Items: append([]T{}, items[offset:end]...),
		Total: len(items),
	}

	if end < len(items) {
		page.HasMore = true
		page.NextCursor = EncodeCursor(&CursorData{Offset: end, Total: len(items)})
	}

	return page, nil
}
