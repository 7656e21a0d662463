package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/pagination"
)

const maxSearchLen = 100

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParsePagination reads page (>=1) and limit (1..MaxLimit).
func ParsePagination(r *http.Request) (pagination.Params, error) {
	page, err := ParseQueryInt(r, "page", 1, 1, int(^uint32(0)>>1))
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.NewParams(page, limit), nil
}

// ParseSort resolves sort_by/sort_order against spec; unknown values fall back silently.
func ParseSort(r *http.Request, spec pagination.SortSpec) pagination.Sort {
	q := r.URL.Query()
	return spec.Resolve(q.Get("sort_by"), q.Get("sort_order"))
}

// ParseSearch returns the trimmed, length-capped search term.
func ParseSearch(r *http.Request) string {
	return SanitizeString(r.URL.Query().Get("search"), maxSearchLen)
}

// ParseOptionalUUIDQuery returns nil when key is absent.
func ParseOptionalUUIDQuery(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	id, err := ParseUUID(raw, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// ParseUUID validates a path or query identifier.
func ParseUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id").WithDetails(map[string]string{field: "must be a valid id"})
	}
	return id, nil
}
