package token

import "github.com/golang-jwt/jwt/v5"

// Claims is the payload carried by both token kinds. Access tokens embed the
// full identity projection; refresh tokens carry only the user id.
type Claims struct {
	UserID   string `json:"_id"`
	UserName string `json:"userName,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	jwt.RegisteredClaims
}
