package config

import (
	"time"

	"github.com/vidstream/go-video-backend/token"
)

// AuthConfig exposes the token-signing secrets and lifetimes. Secrets are
// read once at startup and handed to the token package explicitly; nothing
// below the server wiring reads the environment.
type AuthConfig interface {
	GetAccessTokenSecret() string
	GetRefreshTokenSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetAccessTokenSecret() string {
	return GetEnv("ACCESS_TOKEN_SECRET", "dev-access-secret")
}

func (Auth) GetRefreshTokenSecret() string {
	return GetEnv("REFRESH_TOKEN_SECRET", "dev-refresh-secret")
}

func (Auth) GetAccessTokenExpiry() time.Duration {
	return getDurationEnv("ACCESS_TOKEN_EXPIRY", token.DefaultAccessExpiry)
}

func (Auth) GetRefreshTokenExpiry() time.Duration {
	return getDurationEnv("REFRESH_TOKEN_EXPIRY", token.DefaultRefreshExpiry)
}

func getDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
