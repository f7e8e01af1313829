package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quill/internal/authz"
	"quill/internal/models"
)

const PrincipalKey = "principal"

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// UserLoader resolves a token subject to a stored user.
type UserLoader interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
}

// SignToken issues an HS256 access token for a user. The server only
// verifies tokens; this exists for tooling and tests.
func SignToken(secret string, userID uint, role models.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: string(role),
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(ttl).Unix(),
			Id:        uuid.New().String(),
			IssuedAt:  now.Unix(),
			Issuer:    "quill",
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func parseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("bearer token is invalid")
	}
	return claims, nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// LoadPrincipal verifies a bearer token, if any, and stores the caller as
// the request principal. The role comes from the user row, not the token.
// A present but invalid token is rejected with 401.
func LoadPrincipal(secret string, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}

		claims, err := parseToken(raw, secret)
		if err != nil {
			abortUnauthorized(c, "Not authorized, token failed")
			return
		}
		id, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || id == 0 {
			abortUnauthorized(c, "Not authorized, token failed")
			return
		}
		user, err := users.GetUser(c.Request.Context(), uint(id))
		if err != nil {
			abortUnauthorized(c, "Not authorized, user not found")
			return
		}

		c.Set(PrincipalKey, &authz.Principal{ID: user.ID, Role: user.Role})
		c.Next()
	}
}

// AuthRequired rejects requests without a principal.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c) == nil {
			abortUnauthorized(c, "Not authorized to access this route")
			return
		}
		c.Next()
	}
}

// Principal returns the request principal or nil.
func Principal(c *gin.Context) *authz.Principal {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(*authz.Principal); ok {
			return p
		}
	}
	return nil
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"error":   gin.H{"type": "Unauthenticated"},
	})
}
