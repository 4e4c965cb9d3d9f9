package jwt

import (
	"fmt"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
)

// TokenError represents JWT token related errors
type TokenError string

func (e TokenError) Error() string {
	return string(e)
}

const (
	DefaultAccessTokenExpire = time.Hour * 24

	ErrNeedTokenProvider = TokenError("cannot sign token without token provider")
	ErrInvalidToken      = TokenError("invalid token")
	ErrTokenParsing      = TokenError("token parsing error")
)

// Token represents the token body
type Token struct {
	JTI     string         `json:"jti"`
	Payload map[string]any `json:"payload"`
	Subject string         `json:"sub"`
	Expire  time.Duration  `json:"exp"`
}

// TokenManager handles JWT token operations
type TokenManager struct {
	key    string
	expire time.Duration
	now    func() time.Time
}

// NewTokenManager creates a new TokenManager instance. A zero expire falls
// back to DefaultAccessTokenExpire.
func NewTokenManager(key string, expire ...time.Duration) *TokenManager {
	jtm := &TokenManager{key: key, expire: DefaultAccessTokenExpire, now: time.Now}
	if len(expire) > 0 && expire[0] > 0 {
		jtm.expire = expire[0]
	}
	return jtm
}

// Expire returns the lifetime of access tokens.
func (jtm *TokenManager) Expire() time.Duration { return jtm.expire }

// validateKey validates the token key
func (jtm *TokenManager) validateKey() error {
	if jtm.key == "" {
		return ErrNeedTokenProvider
	}
	return nil
}

// generateToken generates a JWT token
func (jtm *TokenManager) generateToken(token *Token) (string, error) {
	if err := jtm.validateKey(); err != nil {
		return "", err
	}

	now := jtm.now()
	claims := jwtstd.MapClaims{
		"jti":     token.JTI,
		"sub":     token.Subject,
		"payload": token.Payload,
		"iat":     now.Unix(),
		"exp":     now.Add(token.Expire).Unix(),
	}

	t := jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims)
	return t.SignedString([]byte(jtm.key))
}

// GenerateAccessToken signs an access token. The jti doubles as the
// session id so a sign out can revoke it.
func (jtm *TokenManager) GenerateAccessToken(jti string, payload map[string]any, subject ...string) (string, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	return jtm.generateToken(&Token{
		JTI:     jti,
		Payload: payload,
		Subject: getSubject(subject, "access"),
		Expire:  jtm.expire,
	})
}

// ValidateToken validates a JWT token
func (jtm *TokenManager) ValidateToken(tokenString string) (*jwtstd.Token, error) {
	if err := jtm.validateKey(); err != nil {
		return nil, err
	}

	return jwtstd.Parse(tokenString, func(token *jwtstd.Token) (any, error) {
		if _, ok := token.Method.(*jwtstd.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jtm.key), nil
	}, jwtstd.WithTimeFunc(jtm.now))
}

// DecodeToken decodes a JWT token into its claims
func (jtm *TokenManager) DecodeToken(tokenString string) (map[string]any, error) {
	token, err := jtm.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return token.Claims.(jwtstd.MapClaims), nil
}

// GetTokenIDFromToken extracts JWT ID (jti) from token claims
func GetTokenIDFromToken(claims map[string]any) string {
	if jti, ok := claims["jti"].(string); ok {
		return jti
	}
	return ""
}

// GetExpirationFromToken extracts expiration time from token claims
func GetExpirationFromToken(claims map[string]any) time.Time {
	if exp, ok := claims["exp"].(float64); ok {
		return time.Unix(int64(exp), 0)
	}
	return time.Time{}
}

// GetUserIDFromToken gets the user ID from the token
func GetUserIDFromToken(claims map[string]any) string {
	return getPayloadString(claims, "user_id")
}

// GetEmailFromToken gets the user email from the token
func GetEmailFromToken(claims map[string]any) string {
	return getPayloadString(claims, "email")
}

func getPayloadString(claims map[string]any, key string) string {
	payload, ok := claims["payload"].(map[string]any)
	if !ok {
		return ""
	}
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}

// getSubject returns the subject if provided, otherwise returns the default subject
func getSubject(subject []string, defaultSubject string) string {
	if len(subject) > 0 {
		return subject[0]
	}
	return defaultSubject
}
