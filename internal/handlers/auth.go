package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/signbridge/learning-service/internal/models"
	"github.com/signbridge/learning-service/internal/repositories"
)

// AuthMiddleware validates bearer tokens issued by the identity provider.
// This service does not own identity; it only verifies the signature and
// trusts the subject and role claims.
type AuthMiddleware struct {
	secret   []byte
	userRepo repositories.UserRepository
}

func NewAuthMiddleware(secret string, userRepo repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		secret:   []byte(secret),
		userRepo: userRepo,
	}
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate extracts and verifies the bearer token, then stores user_id
// and role in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
			})
			return
		}

		claims := &tokenClaims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired token",
			})
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

// RequireRole guards a route group behind one of the given roles. The role
// claim is checked first; when the token carries none, the profile store
// decides.
func (m *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		claimRole := models.UserRole(c.GetString("user_role"))

		for _, role := range roles {
			if claimRole == role {
				c.Next()
				return
			}
		}

		if claimRole == "" && m.userRepo != nil {
			for _, role := range roles {
				ok, err := m.userRepo.HasRole(c.Request.Context(), nil, userID, role)
				if err == nil && ok {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
	}
}
