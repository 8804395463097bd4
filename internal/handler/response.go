package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/apimock/apimock-go/internal/model"
)

// All endpoints share one envelope: {diagnostic:{status,message}, data?, page?}.
// Handlers catch every error at this boundary; nothing propagates to the
// transport layer and no internal details leak into responses.

func writeEnvelope(w http.ResponseWriter, code int, env model.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("response encoding failed", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, message string, data any) {
	writeEnvelope(w, http.StatusOK, model.Envelope{
		Diagnostic: model.NewDiagnostic(http.StatusOK, message),
		Data:       data,
	})
}

func writePage(w http.ResponseWriter, message string, data any, page model.Pagination) {
	writeEnvelope(w, http.StatusOK, model.Envelope{
		Diagnostic: model.NewDiagnostic(http.StatusOK, message),
		Data:       data,
		Page:       &page,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeEnvelope(w, code, model.Envelope{Diagnostic: model.NewDiagnostic(code, message)})
}

// decodeJSON decodes a request body capped at 1MB. A false return means
// the response has already been written.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err.Error() == "http: request body too large" {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
