package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/assetvault/internal/common"
)

// challengeAudience keeps verification challenges from being accepted as
// access tokens and the other way round.
const challengeAudience = "email-verification"

// ChallengeClaims binds a verification code to an email. The code is only
// present as a MAC keyed with the server secret, so the token holder cannot
// test candidate codes offline.
type ChallengeClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	CodeMAC string `json:"code_mac"`
}

// CodeMAC returns hex(HMAC-SHA256(secretKey, email || 0x00 || code)).
func CodeMAC(email, code string, secretKey []byte) string {
	m := hmac.New(sha256.New, secretKey)
	m.Write([]byte(email))
	m.Write([]byte{0})
	m.Write([]byte(code))
	return hex.EncodeToString(m.Sum(nil))
}

// GenerateChallenge signs a short-lived challenge for code.
func GenerateChallenge(email, code string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ChallengeClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Audience:  jwt.ClaimStrings{challengeAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Email:   email,
		CodeMAC: CodeMAC(email, code, secretKey),
	})
	return token.SignedString(secretKey)
}

// ParseChallenge validates a challenge and returns its claims.
func ParseChallenge(challenge string, secretKey []byte) (*ChallengeClaims, error) {
	claims := &ChallengeClaims{}
	_, err := jwt.ParseWithClaims(challenge, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(challengeAudience),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if claims.Email == "" || claims.CodeMAC == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Matches reports whether code is the one the challenge was issued for.
func (c *ChallengeClaims) Matches(code string, secretKey []byte) bool {
	want, err := hex.DecodeString(c.CodeMAC)
	if err != nil {
		return false
	}
	got, _ := hex.DecodeString(CodeMAC(c.Email, code, secretKey))
	return hmac.Equal(want, got)
}
