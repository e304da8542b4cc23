package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/vidstream/go-video-backend/users"
)

// Default token lifetimes, shared with the config layer so the two cannot
// drift apart.
const (
	DefaultAccessExpiry  = 15 * time.Minute
	DefaultRefreshExpiry = 10 * 24 * time.Hour
)

// Issuer mints signed access and refresh tokens. Access and refresh tokens
// are signed with independent secrets, so each kind gets its own signer.
type Issuer struct {
	accessSigner  Signer
	refreshSigner Signer
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	nowFunc       func() time.Time
}

type IssuerOption func(*Issuer)

// WithTokenExpiry overrides the default token lifetimes.
func WithTokenExpiry(accessExpiry, refreshExpiry time.Duration) IssuerOption {
	return func(i *Issuer) {
		i.accessExpiry = accessExpiry
		i.refreshExpiry = refreshExpiry
	}
}

// WithNowFunc sets the clock (primarily for testing).
func WithNowFunc(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowFunc = now
	}
}

func NewIssuer(accessSigner, refreshSigner Signer, options ...IssuerOption) *Issuer {
	i := &Issuer{
		accessSigner:  accessSigner,
		refreshSigner: refreshSigner,
		accessExpiry:  DefaultAccessExpiry,
		refreshExpiry: DefaultRefreshExpiry,
		nowFunc:       time.Now,
	}

	for _, opt := range options {
		opt(i)
	}
	return i
}

// AccessToken signs a short-lived token embedding the user's identity claims.
func (i *Issuer) AccessToken(user *users.User) (string, error) {
	now := i.nowFunc()
	claims := Claims{
		UserID:   user.ID.Hex(),
		UserName: user.UserName,
		Email:    user.Email,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessExpiry)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := i.accessSigner.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Issuer.AccessToken Sign")
	}
	return signed, nil
}

// RefreshToken signs a long-lived token embedding only the user id.
func (i *Issuer) RefreshToken(userID string) (string, error) {
	now := i.nowFunc()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.refreshExpiry)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := i.refreshSigner.Sign(claims)
	if err != nil {
		return "", errors.Wrap(err, "Issuer.RefreshToken Sign")
	}
	return signed, nil
}
