package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/taller/internal/model"
)

// Claims are the session claims issued after an upstream login.
type Claims struct {
	EmpCode    string `json:"emp_code"`
	EmpNombre  string `json:"emp_nombre,omitempty"`
	EmplCode   string `json:"empl_code,omitempty"`
	EmplNombre string `json:"empl_nombre,omitempty"`
	Username   string `json:"username"`
	jwt.RegisteredClaims
}

// TokenExpiry is the session lifetime.
const TokenExpiry = 7 * 24 * time.Hour

// GenerateToken signs a session token for profile with a unique JTI.
func GenerateToken(secret string, username string, profile *model.UserProfile) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", fmt.Errorf("generating JTI: %w", err)
	}

	now := time.Now()
	claims := Claims{
		EmpCode:    profile.EmpCode,
		EmpNombre:  profile.EmpNombre,
		EmplCode:   profile.EmplCode,
		EmplNombre: profile.EmplNombre,
		Username:   username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   profile.EmpCode,
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a session token.
func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.EmpCode == "" {
		return nil, fmt.Errorf("token without employee")
	}

	return claims, nil
}

func generateJTI() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
