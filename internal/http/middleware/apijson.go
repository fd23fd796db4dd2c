package middleware

import (
	"net/http"
	"strings"

	"todo_backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// IsAPIRequest reports whether the request should get a JSON error body:
// API path prefix, a JSON Accept header without text/html, or an AJAX
// marker. Framework error pages must never leak to API clients.
func IsAPIRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html") {
		return true
	}
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// NotFoundJSON handles unmatched routes: envelope JSON for API requests,
// gin's plain default otherwise.
func NotFoundJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAPIRequest(c.Request) {
			response.Fail(c, http.StatusNotFound, "The requested resource was not found", nil)
			return
		}
		c.String(http.StatusNotFound, "404 page not found")
	}
}

// MethodNotAllowedJSON handles matched paths with the wrong method.
func MethodNotAllowedJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsAPIRequest(c.Request) {
			response.Fail(c, http.StatusMethodNotAllowed, "Method not allowed", nil)
			return
		}
		c.String(http.StatusMethodNotAllowed, "405 method not allowed")
	}
}
