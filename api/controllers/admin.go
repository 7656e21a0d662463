package controllers

import (
	"net/http"

	"github.com/storeratings/storeratings-backend/api/responses"
	"github.com/storeratings/storeratings-backend/internal/analytics"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/logger"
)

// AdminDashboard returns platform-wide totals, growth and rating trends.
func AdminDashboard(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		dash, err := svc.AdminDashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dash)
	}
}
