package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(next)
}

func GetReqId(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}
