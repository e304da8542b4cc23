// Package server exposes the account API over HTTP.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidstream/go-video-backend/auth"
	"github.com/vidstream/go-video-backend/internal/config"
	"github.com/vidstream/go-video-backend/token"
)

type Server struct {
	engine         *gin.Engine
	config         config.Config
	sessions       *auth.SessionService
	accessVerifier *token.Verifier
	cookieMaxAge   int
}

func New(cfg config.Config, sessions *auth.SessionService, accessVerifier *token.Verifier) *Server {
	if cfg.GetEnv() != "DEV" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(RequestLogger(), gin.Recovery(), CORS(cfg.GetCorsOrigin()))

	s := &Server{
		engine:         engine,
		config:         cfg,
		sessions:       sessions,
		accessVerifier: accessVerifier,
		cookieMaxAge:   int(cfg.GetRefreshTokenExpiry().Seconds()),
	}

	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}
