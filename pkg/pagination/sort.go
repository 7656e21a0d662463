package pagination

import (
	"strings"

	"github.com/storeratings/storeratings-backend/pkg/enums"
)

// SortSpec maps allow-listed logical field names onto fixed column expressions.
// Caller input only selects among these entries; it never reaches query text.
type SortSpec struct {
	columns      map[string]string
	defaultField string
	defaultOrder enums.SortOrder
	tiebreaker   string
}

// NewSortSpec builds a spec. defaultField must be a key of columns.
func NewSortSpec(defaultField string, defaultOrder enums.SortOrder, tiebreaker string, columns map[string]string) SortSpec {
	copied := make(map[string]string, len(columns))
	for field, column := range columns {
		copied[field] = column
	}
	if !defaultOrder.IsValid() {
		defaultOrder = enums.SortAsc
	}
	return SortSpec{
		columns:      copied,
		defaultField: defaultField,
		defaultOrder: defaultOrder,
		tiebreaker:   tiebreaker,
	}
}

// Sort is a resolved ordering.
type Sort struct {
	Field      string
	Order      enums.SortOrder
	column     string
	tiebreaker string
}

// Resolve falls back to the default field/order when the request names
// anything outside the allow-list.
func (s SortSpec) Resolve(field, order string) Sort {
	key := strings.ToLower(strings.TrimSpace(field))
	column, ok := s.columns[key]
	if !ok {
		key = s.defaultField
		column = s.columns[key]
	}
	return Sort{
		Field:      key,
		Order:      enums.ParseSortOrder(order, s.defaultOrder),
		column:     column,
		tiebreaker: s.tiebreaker,
	}
}

// Fields lists the allow-listed names.
func (s SortSpec) Fields() []string {
	fields := make([]string, 0, len(s.columns))
	for field := range s.columns {
		fields = append(fields, field)
	}
	return fields
}

// Clause renders the ORDER BY expression, appending the tiebreaker so
// consecutive pages never overlap.
func (s Sort) Clause() string {
	var b strings.Builder
	b.WriteString(s.column)
	b.WriteString(" ")
	b.WriteString(s.Order.SQL())
	if s.tiebreaker != "" && s.tiebreaker != s.column {
		b.WriteString(", ")
		b.WriteString(s.tiebreaker)
		b.WriteString(" ASC")
	}
	return b.String()
}
