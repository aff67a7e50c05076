package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-auth-service/internal/usecase"
)

// PasswordHandler serves the reset-token flow.
type PasswordHandler struct {
	reset *usecase.PasswordResetService
}

// NewPasswordHandler builds the handler.
func NewPasswordHandler(reset *usecase.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{reset: reset}
}

// RegisterRoutes attaches the reset endpoints to the engine.
func (h *PasswordHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/reset_password", h.IssueToken)
	r.PUT("/reset_password", h.UpdatePassword)
}

// IssueToken mints a reset token for the form email. Unknown emails answer
// 403 so the endpoint does not confirm which addresses are registered.
func (h *PasswordHandler) IssueToken(c *gin.Context) {
	email := c.PostForm("email")

	token, err := h.reset.IssueResetToken(c.Request.Context(), email)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusForbidden, Body: ErrorResponse{Error: "Forbidden"}},
		}, http.StatusInternalServerError, "reset token issue failed")
		return
	}

	c.JSON(http.StatusOK, ResetTokenResponse{Email: email, ResetToken: token})
}

// UpdatePassword redeems a reset token with a new password.
func (h *PasswordHandler) UpdatePassword(c *gin.Context) {
	email := c.PostForm("email")
	token := c.PostForm("reset_token")
	newPassword := c.PostForm("new_password")

	if err := h.reset.UpdatePassword(c.Request.Context(), token, newPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidToken, Status: http.StatusForbidden, Body: ErrorResponse{Error: "Forbidden"}},
		}, http.StatusInternalServerError, "password update failed")
		return
	}

	c.JSON(http.StatusOK, UserResponse{Email: email, Message: "Password updated"})
}
