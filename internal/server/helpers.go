package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/STTM-NSU/investboard/internal/apperr"
	"github.com/bytedance/sonic"
)

const (
	_maxBodyBytes = 1 << 20

	msgInvalidBody  = "Ungültiger Request-Body."
	msgBodyTooLarge = "Request-Body zu groß."
)

type errorResponse struct {
	Error string `json:"error"`
}

func (a *API) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(data); err != nil {
		a.logger.Warnf("%s: can't encode response", err)
	}
}

// writeError answers with the client message of err. 5xx causes are logged
// with the request's correlation id and never sent to the client.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		a.logger.Errorf("%s %s [%s]: %v", r.Method, r.URL.Path, w.Header().Get(headerCorrelationID), err)
	}
	a.writeJSON(w, status, errorResponse{Error: apperr.Message(err)})
}

// decode reads at most _maxBodyBytes of JSON from the request into dst.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, _maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgBodyTooLarge})
			return false
		}
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return false
	}
	if err := sonic.ConfigStd.Unmarshal(data, dst); err != nil {
		a.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return false
	}
	return true
}

// pathID parses the {id} segment. Anything unparsable becomes 0, which never
// names an entity, so the services answer it with their not-found error.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
