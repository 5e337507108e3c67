package serve

import (
	"encoding/json"
	"net/http"
)

// error responses carry a small JSON body with the collaborator's message
type errorBody struct {
	Detail string `json:"detail"`
}

func sendError(w http.ResponseWriter, status int, detail string) {
	body, _ := json.Marshal(errorBody{Detail: detail})
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func sendNotFound(w http.ResponseWriter) {
	sendError(w, http.StatusNotFound, "not found")
}

func sendBadRequest(w http.ResponseWriter, detail string) {
	sendError(w, http.StatusBadRequest, detail)
}

func sendInternalServerError(w http.ResponseWriter, detail string) {
	sendError(w, http.StatusInternalServerError, detail)
}

func sendMethodNotAllowed(w http.ResponseWriter) {
	sendError(w, http.StatusMethodNotAllowed, "method not allowed")
}
