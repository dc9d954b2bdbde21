package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Validator is implemented by the request DTOs in the controllers package.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate decodes the request body into dest, rejecting unknown
// fields, and runs Validate if dest implements Validator. On failure it
// writes a 400 bad_request envelope and returns false; the caller must
// return without touching dest further. Note the availability payloads are
// not decoded here beyond the wrapper object: the inner string is stored
// verbatim and only checked by the participant service.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}
