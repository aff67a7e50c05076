package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arklim/user-auth-service/internal/transport/http/middleware"
	"github.com/arklim/user-auth-service/internal/usecase"
)

// AuthHandler serves registration, login, logout, and profile.
type AuthHandler struct {
	auth       *usecase.AuthService
	cookieName string
	// cookieMaxAge mirrors the session duration; 0 makes the cookie live
	// until the browser closes, matching disabled expiry.
	cookieMaxAge int
	logger       *zap.Logger
}

// NewAuthHandler builds the handler. cookieMaxAge is whole seconds.
func NewAuthHandler(auth *usecase.AuthService, cookieName string, cookieMaxAge int, logger *zap.Logger) *AuthHandler {
	if cookieName == "" {
		cookieName = "session_id"
	}
	if cookieMaxAge < 0 {
		cookieMaxAge = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		auth:         auth,
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		logger:       logger,
	}
}

// RegisterRoutes attaches the handler's endpoints to the engine.
func (h *AuthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Welcome)
	r.POST("/users", h.Register)
	r.POST("/sessions", h.Login)
	r.DELETE("/sessions", h.Logout)
	r.GET("/profile", h.Profile)
}

// Welcome greets unauthenticated visitors.
func (h *AuthHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Bienvenue"})
}

// Register creates a user from form credentials.
func (h *AuthHandler) Register(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.auth.Register(c.Request.Context(), email, password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAlreadyExists, Status: http.StatusBadRequest, Body: MessageResponse{Message: "email already registered"}},
		}, http.StatusInternalServerError, "registration failed")
		return
	}

	c.JSON(http.StatusOK, UserResponse{Email: user.Email, Message: "user created"})
}

// Login validates form credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	ok, err := h.auth.ValidateLogin(c.Request.Context(), email, password)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "login failed"})
		return
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	sessionID, err := h.auth.CreateSessionFor(c.Request.Context(), email)
	if err != nil || sessionID == "" {
		if err != nil {
			c.Error(err)
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "login failed"})
		return
	}

	c.SetCookie(h.cookieName, sessionID, h.cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, UserResponse{Email: email, Message: "logged in"})
}

// Logout destroys the cookie's session and sends the visitor back home.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(h.cookieName)
	if err != nil || sessionID == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	user, err := h.auth.ResolveSession(c.Request.Context(), sessionID)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "logout failed"})
		return
	}
	if user == nil {
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), user.ID); err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "logout failed"})
		return
	}

	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Profile returns the authenticated user's email. The authentication
// middleware may have resolved the user already; otherwise the session
// cookie is resolved directly so the route also works in Basic mode.
func (h *AuthHandler) Profile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		sessionID, err := c.Cookie(h.cookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
			return
		}
		user, err = h.auth.ResolveSession(c.Request.Context(), sessionID)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "profile lookup failed"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
			return
		}
	}

	c.JSON(http.StatusOK, ProfileResponse{Email: user.Email})
}
