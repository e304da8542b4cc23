package users

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// User is the account document stored in the users collection.
type User struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	UserName     string          `bson:"userName" json:"userName"`   // Unique, lowercased
	Email        string          `bson:"email" json:"email"`         // Unique, lowercased
	FullName     string          `bson:"fullName" json:"fullName"`   // Display name
	Avatar       string          `bson:"avatar" json:"avatar"`       // Media-host URL, required
	CoverImage   string          `bson:"coverImage,omitempty" json:"coverImage,omitempty"` // Media-host URL, optional
	PasswordHash string          `bson:"password" json:"-"`          // Never serialize
	RefreshToken string          `bson:"refreshToken,omitempty" json:"-"` // Current session token, empty when logged out
	WatchHistory []bson.ObjectID `bson:"watchHistory,omitempty" json:"watchHistory,omitempty"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// PublicUser is the outward projection of a User. The password hash and the
// stored refresh token never leave the service.
type PublicUser struct {
	ID           string          `json:"id"`
	UserName     string          `json:"userName"`
	Email        string          `json:"email"`
	FullName     string          `json:"fullName"`
	Avatar       string          `json:"avatar"`
	CoverImage   string          `json:"coverImage,omitempty"`
	WatchHistory []bson.ObjectID `json:"watchHistory,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Public returns the projection of the user that is safe to hand to callers.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:           u.ID.Hex(),
		UserName:     u.UserName,
		Email:        u.Email,
		FullName:     u.FullName,
		Avatar:       u.Avatar,
		CoverImage:   u.CoverImage,
		WatchHistory: u.WatchHistory,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// Normalize lowercases and trims the identity fields. Duplicate detection at
// registration relies on identifiers being normalized before they hit the
// repository.
func (u *User) Normalize() {
	u.UserName = NormalizeIdentifier(u.UserName)
	u.Email = NormalizeIdentifier(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
}

// NormalizeIdentifier canonicalizes a username or email for lookup.
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate checks the required identity and media fields.
func (u *User) Validate() error {
	if u.UserName == "" {
		return fmt.Errorf("userName is required")
	}
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if u.FullName == "" {
		return fmt.Errorf("fullName is required")
	}
	if u.Avatar == "" {
		return fmt.Errorf("avatar is required")
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// HashPassword runs the plaintext through bcrypt. The salt is generated per
// call and embedded in the digest, so equal inputs yield distinct digests.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a plaintext against a stored digest. It never
// errors on mismatch, it just reports false.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
