package server

import (
	"encoding/json"
	"net/http"

	stderrors "franchisehub-api/internal/common/errors"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps a service error onto the HTTP response. Store and internal
// failures are sanitized before they reach the client.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, stderrors.HTTPStatus(err), errorResponse{
		Error: errorBody{
			Code:    string(stderrors.Code(err)),
			Message: stderrors.ClientMessage(err),
		},
	})
}
