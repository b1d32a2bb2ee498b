package qr

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 签名二维码的声明：sub 为 uid，jti 为 nonce
type Claims struct {
	Points   int    `json:"points"`
	Category string `json:"category"`
	jwt.RegisteredClaims
}

// Signer HS256 签名与校验
type Signer struct {
	secret []byte
	now    func() time.Time
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

func (s *Signer) Sign(p Payload) (string, error) {
	claims := Claims{
		Points:   p.Points,
		Category: p.Category,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UID,
			ID:        p.Nonce,
			IssuedAt:  jwt.NewNumericDate(p.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign qr token: %w", err)
	}
	return signed, nil
}

// Parse 校验签名与过期时间
func (s *Signer) Parse(tokenStr string) (Payload, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Payload{}, ErrExpired
		}
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	p := Payload{
		UID:      claims.Subject,
		Points:   claims.Points,
		Category: claims.Category,
		Nonce:    claims.ID,
	}
	if claims.IssuedAt != nil {
		p.CreatedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return p, nil
}
