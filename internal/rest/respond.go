package rest

import (
	"encoding/json"
	"net/http"

	"github.com/fekuna/fleetops-maintenance-service/pkg/apperr"
)

func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error string `json:"error"`
}

// Error maps a usecase error onto the wire without leaking internals.
func Error(w http.ResponseWriter, err error) {
	JSON(w, apperr.HTTPStatus(err), errorBody{Error: apperr.PublicMessage(err)})
}

// Decode parses a JSON request body.
func Decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}
