package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Message string `json:"error"`
	Code    string `json:"error_code"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

// Respond translates any error coming out of a use case or repository
// into the JSON error body.
func Respond(c *gin.Context, err error) {
	if IsBusy(err) && KindOf(err) != KindBusy {
		err = Busy(err)
	}

	var be BusinessError
	if errors.As(err, &be) {
		body := gin.H{
			"error":      be.Message,
			"error_code": be.Code,
		}
		if be.Message == "" {
			body["error"] = be.Code
		}
		for k, v := range be.Extra {
			body[k] = v
		}
		c.JSON(be.Status(), body)
		return
	}

	slog.ErrorContext(c.Request.Context(), "unhandled error",
		"path", c.FullPath(),
		"error", err,
	)
	Internal(c, "internal_error", "Error interno del servidor")
}
