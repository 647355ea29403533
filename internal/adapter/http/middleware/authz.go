package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/comeca-ai/leao-pet-vitality/configs"
)

const userIDKey = "user_id"

type Authz struct {
	cfg configs.Config
}

func NewAuthz(cfg configs.Config) *Authz {
	return &Authz{cfg: cfg}
}

// RequireUser rejects requests without a valid bearer token and stores the
// authenticated user id in the gin context.
func (a *Authz) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := a.userFrom(c)
		if !ok {
			unauth(c, "invalid_token", "missing or invalid bearer token")
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// OptionalUser resolves the user when a token is present but lets guest
// requests through. Checkout accepts both.
func (a *Authz) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := a.userFrom(c); ok {
			c.Set(userIDKey, id)
		}
		c.Next()
	}
}

func (a *Authz) userFrom(c *gin.Context) (uuid.UUID, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return uuid.Nil, false
	}

	raw := strings.TrimPrefix(auth, "Bearer ")
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(a.cfg.Security.JWTSecret), nil
	}, jwt.WithLeeway(30*time.Second)) // small clock skew
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, false
	}
	if claims["iss"] != a.cfg.Security.Issuer || claims["aud"] != a.cfg.Security.Audience {
		return uuid.Nil, false
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// UserID returns the authenticated user id set by RequireUser/OptionalUser.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func unauth(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}
