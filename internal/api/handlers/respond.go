package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Shared request validator; validator caches struct metadata, so one
// instance serves all handlers.
var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusOK is the body for mutation endpoints that return no resource.
var statusOK = map[string]string{"status": "OK"}
