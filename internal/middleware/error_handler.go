package middleware

import (
	"net/http"
	"time"

	"stolarpos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Routes whose clients read {success, message} instead of {detail}; devices
// replaying their offline queue post to these.
var saleIngestionRoutes = map[string]bool{
	"/sales":        true,
	"/sales/create": true,
}

// abortInternal ends the request with a 500 in the envelope the route's
// clients expect. Internals never reach the body.
func abortInternal(c *gin.Context) {
	const msg = "internal server error"
	if c.Request.Method == http.MethodPost && saleIngestionRoutes[c.FullPath()] {
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.SaleFailure(msg))
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(msg))
}

// ErrorHandler turns errors handlers attached with c.Error into a 500,
// unless the handler already wrote its own response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err.Err).
			Msg("unhandled error")

		if c.Writer.Written() {
			return
		}
		abortInternal(c)
	}
}

// Recovery converts panics into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("route", c.FullPath()).
					Interface("panic", r).
					Msg("panic recovered")
				abortInternal(c)
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. 5xx log at error and 4xx at warn, so
// rejected device replays stand out from normal traffic.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}
		log.WithLevel(level).
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("client_ip", c.ClientIP()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
