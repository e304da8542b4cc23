package auth

import (
	"io"

	"github.com/vidstream/go-video-backend/users"
)

// TokenPair is the access/refresh pair handed back on login and refresh. The
// caller is responsible for client-side storage (cookies or headers).
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ImageFile is an uploaded image handed through to the media store.
type ImageFile struct {
	Name string
	Data io.Reader
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	UserName string
	Email    string
	FullName string
	Password string
}

// LoginInput identifies a user by username or email. Either identifier may be
// empty, but not both.
type LoginInput struct {
	UserName string
	Email    string
	Password string
}

// LoginResult is the success payload of Login and Refresh.
type LoginResult struct {
	User   *users.PublicUser `json:"user"`
	Tokens TokenPair         `json:"tokens"`
}
