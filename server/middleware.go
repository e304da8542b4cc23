package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	ctxUserIDKey = "user_id"

	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// RequireAuth verifies the access token from the Authorization header or the
// accessToken cookie and attaches the caller's user id to the request context.
func (s *Server) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			raw = strings.TrimPrefix(h, "Bearer ")
		} else if cookie, err := c.Cookie(accessTokenCookie); err == nil {
			raw = cookie
		}

		if raw == "" {
			c.AbortWithStatusJSON(401, apiResponse{Status: 401, Message: "unauthorized"})
			return
		}

		claims, err := s.accessVerifier.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(401, apiResponse{Status: 401, Message: "unauthorized"})
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Next()
	}
}

// callerID returns the authenticated caller's user id, or "" when the request
// carries no caller context.
func callerID(c *gin.Context) string {
	id, _ := c.Get(ctxUserIDKey)
	s, _ := id.(string)
	return s
}

// CORS allows browser clients from the configured origin and answers
// preflight requests. Credentials are allowed because the tokens ride in
// cookies.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// RequestLogger emits one structured log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
