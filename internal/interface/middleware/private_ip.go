package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP lets through only requests whose TCP peer is loopback or
// in a private range (10/8, 172.16/12, 192.168/16, fc00::/7). Forwarded
// headers are ignored here since clients can set them freely. Others get 404.
func AllowPrivateIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		parsed := net.ParseIP(c.RemoteIP())
		if parsed == nil || !(parsed.IsLoopback() || parsed.IsPrivate()) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}
}
