package controllers

import (
	"net/http"

	"github.com/storeratings/storeratings-backend/api/responses"
	"github.com/storeratings/storeratings-backend/api/validators"
	"github.com/storeratings/storeratings-backend/internal/ratings"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/logger"
)

// AdminRatingList lists every rating, optionally narrowed by store_id and user_id.
func AdminRatingList(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rating service unavailable"))
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := validators.ParseOptionalUUIDQuery(r, "store_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseOptionalUUIDQuery(r, "user_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AdminList(r.Context(), ratings.AdminFilter{StoreID: storeID, UserID: userID, Page: page})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AdminRatingDelete(svc ratings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rating service unavailable"))
			return
		}
		id, err := pathID(r, "ratingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.AdminDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
