package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
	"github.com/gatehouse-io/gatehouse/internal/logging"
)

type errorBody struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps a domain error to its HTTP shape. Errors without a
// known classification become an opaque 500 so internal details never
// reach the client.
func writeError(ctx context.Context, w http.ResponseWriter, log logging.Logger, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, errorBody{Status: appErr.Status, Error: appErr.Code})
		return
	}
	log.Error(ctx, "unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Status: http.StatusInternalServerError,
		Error:  "InternalServerError",
	})
}
