package api

import (
	"net"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/logging"
)

// healthPath is polled often and only logged at debug level
const healthPath = "/api/v1/health"

// loggingMiddleware logs one line per request, at a level that follows the
// response status.
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		line := "%s %s %s -> %d in %s"
		args := []any{param.ClientIP, param.Method, param.Path, param.StatusCode, param.Latency}
		if param.ErrorMessage != "" {
			line += " (%s)"
			args = append(args, param.ErrorMessage)
		}

		switch {
		case param.StatusCode >= http.StatusInternalServerError:
			logging.Error("API: "+line, args...)
		case param.StatusCode >= http.StatusBadRequest:
			logging.Warn("API: "+line, args...)
		case param.Path == healthPath:
			logging.Debug("API: "+line, args...)
		default:
			logging.Info("API: "+line, args...)
		}
		return ""
	})
}

// corsMiddleware lets pages served from the local machine call the API. The
// daemon acts with the user's session, so other origins get no CORS headers
// and browsers keep them out.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Header("Vary", "Origin")

		if isLoopbackOrigin(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Accept, Content-Type")
			c.Header("Access-Control-Max-Age", "300")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func isLoopbackOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
