package pagination

import (
	"encoding/base64"
	"encoding/json"
)

// Pagination binds cursor query parameters on list endpoints.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"`
}

// Limit normalizes the requested page size into the allowed window.
func (p Pagination) Limit() int {
	switch {
	case p.PageSize <= 0:
		return 50
	case p.PageSize > 250:
		return 250
	default:
		return p.PageSize
	}
}

type Cursor struct {
	ID string `json:"id,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// TrimPage drops the look-ahead row fetched beyond the limit and reports the
// cursor for the next page. The caller fetches limit+1 rows.
func TrimPage[T any](data []T, limit int, extractCursor func(T) string) ([]T, *PageInfo) {
	if len(data) == 0 {
		return data, &PageInfo{HasMore: false}
	}

	hasMore := false
	if len(data) > limit {
		hasMore = true
		data = data[:limit]
	}

	info := &PageInfo{HasMore: hasMore}
	if hasMore {
		token, err := EncodeCursor(Cursor{ID: extractCursor(data[len(data)-1])})
		if err == nil {
			info.NextPageToken = token
		}
	}
	return data, info
}
