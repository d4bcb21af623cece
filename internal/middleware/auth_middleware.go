package middleware

import (
	"net/http"
	"strings"

	"github.com/2nas159/car-rental-app/internal/models"
	"github.com/2nas159/car-rental-app/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by AuthRequired.
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// AuthRequired validates the bearer token and puts the caller's identity on
// the request context.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrInvalidToken)
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, claims.Role)

		c.Next()
	}
}

// OwnerRequired gates owner-only routes. Must run after AuthRequired.
func OwnerRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if role != string(models.UserRoleOwner) {
			utils.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "Owner access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID returns the authenticated caller's ID from the context.
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}
