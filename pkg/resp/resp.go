package resp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusError is implemented by domain errors that know their HTTP mapping.
type StatusError interface {
	error
	HTTPStatus() int
	ErrorCode() string
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": data})
}
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg, "code": "bad_request"})
}
func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": msg, "code": "unauthorized"})
}
func Forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": msg, "code": "forbidden"})
}
func Conflict(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusConflict, gin.H{"ok": false, "error": msg, "code": "conflict"})
}

// ServerError hides err from the client; the caller's logger gets the details.
func ServerError(c *gin.Context, err error) {
	logger(c).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal server error", "code": "internal"})
}

// Error writes err using its domain mapping, or a 500 for anything unknown.
func Error(c *gin.Context, err error) {
	var se StatusError
	if errors.As(err, &se) {
		c.AbortWithStatusJSON(se.HTTPStatus(), gin.H{"ok": false, "error": err.Error(), "code": se.ErrorCode()})
		return
	}
	ServerError(c, err)
}

const LoggerKey = "logger"

func logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.L()
}
