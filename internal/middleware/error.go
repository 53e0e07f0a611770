package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// responseRecorder is a custom ResponseWriter to capture status and body
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       string
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	if statusCode >= 400 {
		// the JSON body replaces whatever content type the handler chose
		r.Header().Set("Content-Type", "application/json")
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.statusCode >= 400 {
		r.body = strings.TrimSpace(string(b))
		// Do not write the original error body to the response
		return len(b), nil
	}
	return r.ResponseWriter.Write(b)
}

// ErrorHandler wraps plain http handlers so that panics and error statuses
// come back as a JSON ErrorResponse.
func ErrorHandler(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(logrus.Fields{
					"path":  r.URL.Path,
					"panic": err,
				}).Error("Handler panicked")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Internal Server Error"})
			} else if rec.statusCode >= 400 {
				log.WithFields(logrus.Fields{
					"path":   r.URL.Path,
					"status": rec.statusCode,
				}).Warn(rec.body)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: rec.body})
			}
		}()

		next.ServeHTTP(rec, r)
	})
}
