package services

import (
	"encoding/json"
	"strings"
)

// Pagination is the metadata block attached to every paginated listing.
type Pagination struct {
	Page      int  `json:"page"`
	Limit     int  `json:"limit"`
	Total     int  `json:"total"`
	PageCount int  `json:"pageCount"`
	HasMore   bool `json:"hasMore"`
	NextPage  *int `json:"nextPage"`
	PrevPage  *int `json:"prevPage"`
}

const (
	defaultLimit = 20
	maxLimit     = 50
)

// clampPaging normalizes page (>=1) and limit (1..50, default 20).
func clampPaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// newPagination computes the metadata for a filtered total.
func newPagination(page, limit, total int) Pagination {
	pageCount := (total + limit - 1) / limit
	p := Pagination{
		Page:      page,
		Limit:     limit,
		Total:     total,
		PageCount: pageCount,
		HasMore:   page < pageCount,
	}
	if p.HasMore {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

// pageSlice returns list[(page-1)*limit : page*limit], clamped.
func pageSlice[T any](list []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(list) {
		return []T{}
	}
	end := start + limit
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

// decodeAnswerValue turns a stored answer back into its API shape:
// JSON-array strings decode into a list, everything else (including
// uploaded-asset URLs) stays a plain string.
func decodeAnswerValue(value string) interface{} {
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		var list []interface{}
		if err := json.Unmarshal([]byte(value), &list); err == nil {
			return list
		}
	}
	return value
}
