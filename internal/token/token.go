package token

import (
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// UserJWT is the claim set carried by access tokens.
type UserJWT struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	IsAdmin bool   `json:"is_admin"`
	jwt.StandardClaims
}

func EncodeAccessToken(signingKey []byte, userID, email, role string, isAdmin bool, ttl time.Duration) (string, error) {
	claims := &UserJWT{
		UserID:  userID,
		Email:   email,
		Role:    role,
		IsAdmin: isAdmin,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().UTC().Unix(),
			ExpiresAt: time.Now().UTC().Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey)
}

func ParseAccessToken(signingKey []byte, raw string) (*UserJWT, error) {
	claims := &UserJWT{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return signingKey, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse access token")
	}
	if !token.Valid {
		return nil, errors.New("access token is invalid")
	}
	return claims, nil
}
