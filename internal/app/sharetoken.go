package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ShareTokenService issues signed tokens that let a concluded session's
// result summary be fetched by users outside the match.
type ShareTokenService struct {
	secret string
	issuer string
	ttl    time.Duration
}

// ShareClaims are the verified contents of a share token.
type ShareClaims struct {
	OwnerID    string
	StorageKey string
}

func NewShareTokenService(secret, issuer string, ttl time.Duration) *ShareTokenService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ShareTokenService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

// GenerateToken signs a token granting read access to the owner's stored
// session summary under the given storage key.
func (s *ShareTokenService) GenerateToken(ownerID, storageKey string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("share token service is nil")
	}
	if ownerID == "" {
		return "", fmt.Errorf("owner is required")
	}
	if storageKey == "" {
		return "", fmt.Errorf("storage key is required")
	}
	if s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("share token config is incomplete")
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": ownerID,
		"exp": time.Now().Add(s.ttl).Unix(),
		"key": storageKey,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyToken checks the signature, issuer and expiry and returns the claims.
func (s *ShareTokenService) VerifyToken(tokenString string) (ShareClaims, error) {
	if s == nil || s.secret == "" {
		return ShareClaims{}, fmt.Errorf("share token config is incomplete")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return ShareClaims{}, fmt.Errorf("failed to parse share token: %w", err)
	}
	if !token.Valid {
		return ShareClaims{}, fmt.Errorf("share token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ShareClaims{}, fmt.Errorf("share token claims are malformed")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return ShareClaims{}, fmt.Errorf("share token issuer mismatch")
	}

	out := ShareClaims{}
	out.OwnerID, _ = claims["sub"].(string)
	out.StorageKey, _ = claims["key"].(string)
	if out.OwnerID == "" || out.StorageKey == "" {
		return ShareClaims{}, fmt.Errorf("share token claims are incomplete")
	}
	return out, nil
}
