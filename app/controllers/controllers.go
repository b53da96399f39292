// Package controllers maps HTTP requests onto the service layer. Handlers
// stay thin: bind, call a workflow, write the envelope.
package controllers

import (
	"errors"
	"net/http"

	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/pkg/bind"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/middleware"
	"github.com/mkamalov/bazar/pkg/pagination"
	"github.com/mkamalov/bazar/pkg/response"
)

// fail translates a service error into the JSON envelope.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		response.ValidationError(w, verr.Fields)
		return
	}

	status := services.ErrorStatus(err)
	if status == http.StatusInternalServerError {
		logger.WithCtx(r.Context()).Error("request failed", "error", err)
		response.Error(w, status, "Internal server error")
		return
	}
	response.Error(w, status, err.Error())
}

// identity pulls the authenticated identity; Auth middleware guarantees
// its presence on protected routes.
func identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromCtx(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return middleware.Identity{}, false
	}
	return id, true
}

// identityOptional returns the identity when present, without writing
// an error for anonymous callers.
func identityOptional(r *http.Request) (middleware.Identity, bool) {
	return middleware.IdentityFromCtx(r.Context())
}

// pageParams reads the standard page/per_page query parameters.
func pageParams(r *http.Request) (int, int) {
	page := bind.QueryInt(r, "page", 1)
	perPage := bind.QueryInt(r, "per_page", pagination.DefaultPerPage)
	return page, perPage
}
