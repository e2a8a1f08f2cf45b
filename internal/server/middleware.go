package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/STTM-NSU/investboard/internal/apperr"
	"github.com/STTM-NSU/investboard/internal/auth"
	"github.com/google/uuid"
)

const (
	headerCorrelationID = "X-Correlation-ID"

	msgTokenMissing = "Token fehlt oder ist ungültig."
	msgTokenInvalid = "Token ungültig oder abgelaufen."
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (a *API) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.writeError(w, r, apperr.NewInternal(apperr.InternalMessage, fmt.Errorf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = r.Header.Get(headerCorrelationID)
		}
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerCorrelationID, id)
		next.ServeHTTP(w, r)
	})
}

func (a *API) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log := a.logger.With(
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"correlation_id", w.Header().Get(headerCorrelationID),
		)
		switch {
		case rec.status >= http.StatusInternalServerError:
			log.Errorf("http request failed")
		case rec.status >= http.StatusBadRequest:
			log.Infof("http request rejected")
		default:
			log.Debugf("http request")
		}
	})
}

func (a *API) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-Correlation-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandlerFunc func(w http.ResponseWriter, r *http.Request, caller auth.Identity)

// authed verifies the bearer token and hands the caller to next. Nothing
// below it runs for an unauthenticated request.
func (a *API) authed(next authedHandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			a.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgTokenMissing})
			return
		}

		caller, err := a.users.Verify(token)
		if err != nil {
			a.logger.Debugf("%s: rejected bearer token", err)
			a.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgTokenInvalid})
			return
		}

		next(w, r, caller)
	})
}
