package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/storeratings/storeratings-backend/api/middleware"
	"github.com/storeratings/storeratings-backend/api/validators"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
)

func requireActor(r *http.Request) (middleware.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return middleware.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	return actor, nil
}

// viewerID returns the caller's id on optionally authenticated routes.
func viewerID(r *http.Request) *uuid.UUID {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return nil
	}
	id := actor.UserID
	return &id
}

func pathID(r *http.Request, key string) (uuid.UUID, error) {
	return validators.ParseUUID(chi.URLParam(r, key), key)
}
