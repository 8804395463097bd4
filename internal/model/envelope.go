package model

import "strconv"

// Diagnostic carries the status and human-readable message every API
// response starts with. The status is the stringified HTTP code.
type Diagnostic struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Envelope is the shared response shape: a diagnostic, plus optional
// payload and pagination metadata.
type Envelope struct {
	Diagnostic Diagnostic  `json:"diagnostic"`
	Data       any         `json:"data,omitempty"`
	Page       *Pagination `json:"page,omitempty"`
}

// NewDiagnostic builds a diagnostic from an HTTP status code and message.
func NewDiagnostic(code int, message string) Diagnostic {
	return Diagnostic{Status: strconv.Itoa(code), Message: message}
}
