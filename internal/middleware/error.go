package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matprat/matprat/backend/internal/service"
)

// ErrorPage is the template rendered for failed page requests.
const ErrorPage = "error"

// ErrorHandler is the single error boundary. Handlers report failures with
// c.Error; panics are recovered here too. Raw error text and stacks are only
// exposed when dev is set.
func ErrorHandler(log logrus.FieldLogger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				err := fmt.Errorf("panic: %v", r)
				log.WithFields(logrus.Fields{
					"method": c.Request.Method,
					"url":    c.Request.URL.String(),
					"error":  err.Error(),
					"stack":  stack,
				}).Error("Recovered from panic")

				message := service.MsgGeneric
				if !dev {
					stack = ""
				} else {
					message = err.Error()
				}
				respondError(c, http.StatusInternalServerError, message, stack)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, message := Resolve(err, dev)

		entry := log.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"url":    c.Request.URL.String(),
			"status": status,
			"error":  err.Error(),
		})
		if status >= http.StatusInternalServerError {
			entry.Error("Request failed")
		} else {
			entry.Warn("Request rejected")
		}

		respondError(c, status, message, "")
	}
}

// Resolve maps an error onto a status code and the message shown to the
// client.
func Resolve(err error, dev bool) (int, string) {
	var (
		nf     *service.NotFoundError
		ve     *service.ValidationError
		ue     *service.UploadError
		dbErr  *service.DatabaseError
		status = http.StatusInternalServerError
		msg    = service.MsgGeneric
	)
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Message
	case errors.As(err, &ue):
		return http.StatusBadRequest, ue.Message
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Authentication required"
	case errors.As(err, &dbErr):
		status, msg = dbErr.Status, dbErr.Message
	}
	if dev {
		msg = err.Error()
	}
	return status, msg
}

func respondError(c *gin.Context, status int, message, stack string) {
	if WantsJSON(c) {
		body := gin.H{"error": message}
		if stack != "" {
			body["stack"] = stack
		}
		c.AbortWithStatusJSON(status, body)
		return
	}
	c.HTML(status, ErrorPage, gin.H{
		"Title":      http.StatusText(status),
		"ActivePage": "",
		"Username":   c.GetString("username"),
		"Status":     status,
		"Message":    message,
		"Stack":      stack,
	})
	c.Abort()
}

// AbortWithError renders an error page or JSON body immediately, for
// handlers that need a specific message.
func AbortWithError(c *gin.Context, status int, message string) {
	respondError(c, status, message, "")
}
