package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/listing-studio/engine/internal/api/types"
	appErr "github.com/listing-studio/engine/pkg/errors"
)

// Defaults fill the optional userId/projectId of a request. There is no
// authentication, so every call acts for the seeded user unless told otherwise.
type Defaults struct {
	UserID    string
	ProjectID string
}

func (d Defaults) user(id string) string {
	if id == "" {
		return d.UserID
	}
	return id
}

func (d Defaults) project(id string) string {
	if id == "" {
		return d.ProjectID
	}
	return id
}

type structValidator interface{ Struct(any) error }

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, v structValidator, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return false
	}
	if v != nil {
		if err := v.Struct(dst); err != nil {
			writeErrorStr(w, http.StatusBadRequest, err.Error())
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.APIResponse{Success: true, Data: data})
}

// writeError answers with the status mapped from the error code.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, types.StatusOf(err), types.APIResponse{Success: false, Error: types.FromAppError(err)})
}

func writeErrorStr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.APIResponse{Success: false, Error: &types.APIError{Code: string(appErr.CodeInvalid), Message: msg}})
}
