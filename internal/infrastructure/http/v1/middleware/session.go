package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "countflow/internal/core/context"
)

const (
	HeaderSessionID = "X-Session-ID"
	HeaderOperator  = "X-Operator"
)

// Session middleware extracts the operator session from request headers.
// The counting terminals send these with every request; both are optional
// since read endpoints need no session.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(HeaderSessionID)
		operator := c.GetHeader(HeaderOperator)
		if sessionID == "" && operator == "" {
			c.Next()
			return
		}

		ctx := appctx.WithSession(c.Request.Context(), &appctx.SessionContext{
			SessionID: sessionID,
			Operator:  operator,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
