package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/vidstream/go-video-backend/internal/errors"
)

// Verifier checks a presented token's signature and expiry and extracts its
// claims. It fails closed: any structural, signature, or expiry problem
// yields a rejection, never partial claims.
type Verifier struct {
	signer  Signer
	nowFunc func() time.Time
}

type VerifierOption func(*Verifier)

// WithVerifierNowFunc sets the clock used for expiry checks (for testing).
func WithVerifierNowFunc(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.nowFunc = now
	}
}

func NewVerifier(signer Signer, options ...VerifierOption) *Verifier {
	v := &Verifier{
		signer:  signer,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// Verify parses and validates a raw token string.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, v.signer.GetVerificationKey,
		jwt.WithValidMethods([]string{v.signer.GetSigningMethod().Alg()}),
		jwt.WithTimeFunc(v.nowFunc),
	)
	if err != nil {
		if apperrors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}
