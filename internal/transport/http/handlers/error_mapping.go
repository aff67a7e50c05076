package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/user-auth-service/internal/infra/security"
)

// ErrorCase maps a sentinel error to an HTTP status code and response body.
type ErrorCase struct {
	Err    error
	Status int
	Body   any
}

// RespondWithMappedError resolves the provided error against known cases or
// falls back to a generic response. Password validation failures always
// answer 400 carrying the validator's message, whatever the endpoint.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	var validationErr *security.PasswordValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, MessageResponse{Message: validationErr.Error()})
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			c.JSON(cs.Status, cs.Body)
			return
		}
	}

	c.Error(err)
	c.JSON(fallbackStatus, ErrorResponse{Error: fallbackMessage})
}
