package middleware

import (
	"errors"
	"strings"

	"api/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityContextKey = "sessionIdentity"

// SessionClaims is the subset of the auth frontend's session token we read
type SessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// SessionIdentity is the authenticated caller as seen by handlers
type SessionIdentity struct {
	ExternalID  string
	DisplayName string
}

// IdentityMiddleware parses an optional Bearer session token. An absent or
// invalid token leaves the request anonymous; handlers that need a signed-in
// player check PlayerFromRequest themselves.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if identity, err := parseSessionToken(tokenString); err == nil {
				c.Set(identityContextKey, identity)
			}
		}
		c.Next()
	}
}

func parseSessionToken(tokenString string) (*SessionIdentity, error) {
	if config.SessionSecret == "" {
		return nil, errors.New("session secret is not configured")
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.SessionSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid session token")
	}

	return &SessionIdentity{
		ExternalID:  claims.Subject,
		DisplayName: claims.Name,
	}, nil
}

// PlayerFromRequest returns the authenticated identity, or false when the
// request is anonymous
func PlayerFromRequest(c *gin.Context) (*SessionIdentity, bool) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*SessionIdentity)
	return identity, ok
}
