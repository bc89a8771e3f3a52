package middleware

import (
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// Sentry binds a per-request Sentry hub to the context and reports panics
// before re-panicking into Recovery. It is a pass-through when the Sentry
// client was never initialised.
func Sentry() gin.HandlerFunc {
	report := sentrygin.New(sentrygin.Options{Repanic: true})
	return func(c *gin.Context) {
		if sentry.CurrentHub().Client() == nil {
			c.Next()
			return
		}
		report(c)
	}
}

// CaptureError reports err on the request's Sentry hub, if any.
func CaptureError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", GetRequestID(c))
		scope.SetTag("route", c.FullPath())
		hub.CaptureException(err)
	})
}
