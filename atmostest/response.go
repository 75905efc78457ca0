package atmostest

import (
	"encoding/xml"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/atmos"
)

// Atmos error codes returned by the fake endpoint.
const (
	CodeObjectNotFound    = 1003
	CodeSignatureMismatch = 1032
	CodeUIDNotFound       = 1033
	CodeInvalidRequest    = 1005
)

// ErrorResponse is the XML error body Atmos returns.
type ErrorResponse struct {
	XMLName xml.Name `xml:"Error"`
	Code    int      `xml:"Code"`
	Message string   `xml:"Message"`
}

// WriteError writes an XML error response
func WriteError(w http.ResponseWriter, status, code int, message string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	if err := xml.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the response matching err.
func HandleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errObjectNotFound):
		WriteError(w, http.StatusNotFound, CodeObjectNotFound, "The requested object was not found.")
	case errors.Is(err, errUnknownUID):
		WriteError(w, http.StatusForbidden, CodeUIDNotFound, err.Error())
	case errors.Is(err, atmos.ErrUnauthorized):
		WriteError(w, http.StatusForbidden, CodeSignatureMismatch, err.Error())
	default:
		WriteError(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}
}
