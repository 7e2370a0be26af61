package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

// AuthMiddleware creates middleware for JWT authentication. The token
// subject identifies the subscriber for trade monitoring.
func AuthMiddleware(jwtSecret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Check if it's a Bearer token
		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			c.Abort()
			return
		}

		// Validate the token
		subscriberID, err := validateToken(headerParts[1], jwtSecret)
		if err != nil {
			logger.Debug("token validation failed", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Set subscriber ID in context
		c.Set("subscriberID", subscriberID)
		c.Next()
	}
}

// validateToken checks the token signature and type and returns the subject.
// Tokens without a type claim are accepted; refresh tokens are rejected.
func validateToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
		return "", errors.New("invalid token type")
	}

	switch sub := claims["sub"].(type) {
	case string:
		if sub == "" {
			return "", errors.New("empty subject")
		}
		return sub, nil
	case float64:
		return strconv.FormatInt(int64(sub), 10), nil
	default:
		return "", errors.New("missing subject")
	}
}

// ServiceAuthMiddleware creates middleware for service-to-service
// authentication on the tick ingestion endpoint
func ServiceAuthMiddleware(serviceKey string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the service key header
		key := c.GetHeader("X-Service-Key")
		if key == "" {
			logger.Warn("Missing service key")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Service key required"})
			c.Abort()
			return
		}

		// Validate the service key
		if key != serviceKey {
			logger.Warn("Invalid service key")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid service key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
