// Package bind decodes and validates request payloads.
package bind

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mkamalov/bazar/pkg/response"
	"github.com/mkamalov/bazar/pkg/validate"
)

// MaxBodyBytes caps request bodies at 1 MiB.
const MaxBodyBytes = 1 << 20

// JSON decodes the request body into dest and runs struct validation.
// On failure it writes the error response itself and returns false, so
// handlers can bail out with a bare return.
func JSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		response.Error(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return false
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return false
	}

	return true
}

// UintParam parses a chi URL parameter as an unsigned integer. Returns
// (0, false) and writes a 404 when the parameter is missing or malformed.
func UintParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.NotFound(w)
		return 0, false
	}
	return uint(id), true
}

// QueryInt reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
