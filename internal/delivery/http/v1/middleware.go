package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/models"
)

const userCtxKey = "user"

func (h *handlerImpl) HandleStoreMiddleware(c *gin.Context) {
	err := h.store.Connect(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to connect to store")
		abort(c, newInternalError())
		return
	}
	c.Next()
}

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	user, err := h.resolver.Resolve(c, c.Request)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to resolve session")
		abort(c, newInternalError())
		return
	}
	if user == nil {
		h.logger.Warn().
			Str("path", c.FullPath()).
			Msg("unauthenticated request")
		abort(c, newUnauthorizedError(msgAuthenticationRequired))
		return
	}

	c.Set(userCtxKey, user)
	c.Next()
}

// currentUser returns the user stored by HandleAuthMiddleware.
func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userCtxKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// RequestLogger logs every request once it has been served.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= 500:
			event = logger.Error()
		case status >= 400:
			event = logger.Warn()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}
		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("served request")
	}
}

// Recovery turns a panic into a generic internal error response.
func Recovery(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("recovered from panic")
		abort(c, newInternalError())
	})
}
