package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddlewareRejectsMalformedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/secure", AuthMiddleware, func(ctx *gin.Context) {
		ctx.Status(http.StatusOK)
	})

	headers := []string{
		"",
		"Bearer",
		"Bearer ",
		"Token abc",
		"Bearer not-a-token",
	}
	for _, header := range headers {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
	}
}
