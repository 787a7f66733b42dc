package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// bridge adapts a net/http middleware to Gin so the admission and
// auth logic stay framework-free.
func bridge(wrap func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		handler := wrap(next)
		handler.ServeHTTP(c.Writer, c.Request)

		// If the middleware already wrote the response, stop the Gin chain
		if c.Writer.Written() {
			c.Abort()
			return
		}
	}
}

// GinAdmit adapts the admission interceptor to Gin.
func GinAdmit(admission *AdmissionMiddleware) gin.HandlerFunc {
	return bridge(admission.Admit)
}

// GinRequireAuth adapts the auth middleware to Gin.
func GinRequireAuth(auth *AuthMiddleware) gin.HandlerFunc {
	return bridge(auth.RequireAuth)
}
