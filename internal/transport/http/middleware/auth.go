package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/user-auth-service/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Authenticate guards every route not named in excludedPaths with the
// configured strategy. A request carrying no credentials at all is rejected
// with 401; credentials that fail to resolve yield 403. The resolved user is
// placed in the gin context under UserKey.
func Authenticate(strategy usecase.Strategy, excludedPaths []string, cookieName string, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	if cookieName == "" {
		cookieName = "session_id"
	}

	return func(c *gin.Context) {
		if !usecase.RequireAuth(c.Request.URL.Path, excludedPaths) {
			c.Next()
			return
		}

		req := NewRequestAdapter(c)
		if req.Header("Authorization") == "" && req.Cookie(cookieName) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}

		user, err := strategy.ResolveIdentity(c.Request.Context(), req)
		if err != nil {
			log.Error("identity resolution failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
			return
		}

		// Downstream handlers only ever see the sanitized copy.
		clean := user.Sanitized()
		c.Set(UserKey, &clean)
		c.Next()
	}
}
