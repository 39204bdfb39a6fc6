package utils

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const businessIDKey = "businessId"

// GenerateToken signs a token scoped to one business.
func GenerateToken(userID, businessID, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not set")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        userID,
		"businessId": businessID,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
	})
	return token.SignedString([]byte(secret))
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:]
	}
	return h
}

// AuthMiddleware requires a valid HS256 token with a businessId claim and
// stores the business id on the context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearer(c)
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		raw, _ := claims[businessIDKey].(string)
		businessID, err := uuid.Parse(raw)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Token is not scoped to a business")
			return
		}

		c.Set("userId", claims["sub"])
		c.Set(businessIDKey, businessID)
		c.Next()
	}
}

// BusinessID returns the business the request is scoped to.
func BusinessID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(businessIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// CronAuth accepts only requests carrying the cron secret as a bearer token.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := bearer(c)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			RespondWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}
