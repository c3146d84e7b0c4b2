package web

import (
	"encoding/json"
	"net/http"

	clinicerrors "github.com/jrsteele09/go-clinic-console/internal/errors"
)

// ErrorBody is the JSON error answer: {"message": "...", "redirect": "..."}.
type ErrorBody struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Message: message})
}

// WriteErr answers with the status and displayable message for err.
func WriteErr(w http.ResponseWriter, err error) {
	status := clinicerrors.HTTPStatus(err)
	fallback := http.StatusText(status)
	if status < http.StatusInternalServerError {
		fallback = err.Error()
	}
	WriteError(w, status, clinicerrors.DisplayMessage(err, fallback))
}

// DecodeJSON reads a JSON request body of at most 1MiB into v.
func DecodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v); err != nil {
		return clinicerrors.Validation("", "invalid JSON body: "+err.Error())
	}
	return nil
}
