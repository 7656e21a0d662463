package enums

import "strings"

// SortOrder is the direction applied to an allow-listed sort column.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (s SortOrder) String() string {
	return string(s)
}

func (s SortOrder) IsValid() bool {
	return s == SortAsc || s == SortDesc
}

// SQL returns the keyword used in ORDER BY clauses.
func (s SortOrder) SQL() string {
	if s == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// ParseSortOrder returns the matching order, or fallback when value is unknown.
func ParseSortOrder(value string, fallback SortOrder) SortOrder {
	candidate := SortOrder(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate
	}
	return fallback
}
