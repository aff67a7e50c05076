package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/arklim/user-auth-service/internal/core/domain"
)

const (
	// UserKey is the gin context key holding the authenticated user.
	UserKey = "current_user"
)

// CurrentUser retrieves the authenticated user placed in the context by the
// Authenticate middleware. Nil when the request is unauthenticated.
func CurrentUser(c *gin.Context) *domain.User {
	value, exists := c.Get(UserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// RequestAdapter presents a gin request as a port.Request for the
// authentication strategies.
type RequestAdapter struct {
	c *gin.Context
}

// NewRequestAdapter wraps a gin context.
func NewRequestAdapter(c *gin.Context) *RequestAdapter {
	return &RequestAdapter{c: c}
}

func (r *RequestAdapter) Header(name string) string {
	return r.c.GetHeader(name)
}

func (r *RequestAdapter) Cookie(name string) string {
	value, err := r.c.Cookie(name)
	if err != nil {
		return ""
	}
	return value
}

func (r *RequestAdapter) FormValue(name string) string {
	return r.c.PostForm(name)
}
