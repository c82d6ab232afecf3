package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/YFrancis10/MeMantra-sub001/internal/common"
	"github.com/YFrancis10/MeMantra-sub001/internal/pkg/logger"
)

// Recovery converts panics into the standard error envelope. The panic value
// is logged, never echoed to the client.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if log != nil {
					log.Error("panic recovered",
						"panic", r,
						"path", c.Request.URL.Path,
						"request_id", c.GetString(RequestIDKey),
					)
				}
				common.Fail(c, http.StatusInternalServerError, "internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}
